package ports

import (
	"context"

	"xlinventory/domain/inventory"
)

// Customizer post-processes the derived structures before assembly. It is
// called exactly once per run and may mutate the structures in place; an
// error aborts the run.
type Customizer interface {
	Customize(ctx context.Context, c *inventory.Customization) error
}

// CustomizerFunc adapts a function to Customizer
type CustomizerFunc func(ctx context.Context, c *inventory.Customization) error

// Customize calls f
func (f CustomizerFunc) Customize(ctx context.Context, c *inventory.Customization) error {
	return f(ctx, c)
}

// NoopCustomizer leaves the structures untouched
var NoopCustomizer Customizer = CustomizerFunc(func(context.Context, *inventory.Customization) error {
	return nil
})

// ChainCustomizers runs customizers in order, stopping at the first error
func ChainCustomizers(customizers ...Customizer) Customizer {
	return CustomizerFunc(func(ctx context.Context, c *inventory.Customization) error {
		for _, customizer := range customizers {
			if customizer == nil {
				continue
			}
			if err := customizer.Customize(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}
