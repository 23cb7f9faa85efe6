package dist

import (
	"github.com/heretique/wrenpp/wren"
)

// Loader adapts a bundle to the VM's module-source hook, so a packed
// project runs without its script files on disk. Modules missing from
// the bundle fall through to next, when given.
func Loader(b *Bundle, next wren.LoadModuleFn) wren.LoadModuleFn {
	return func(name string) (string, error) {
		source, err := b.Source(name)
		if err == nil {
			return source, nil
		}
		if _, ok := b.Modules[name]; ok {
			// Present but corrupt: never fall through.
			return "", err
		}
		if next != nil {
			return next(name)
		}
		return "", wren.ErrModuleNotFound
	}
}
