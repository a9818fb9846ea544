package optim

import (
	"fmt"
	"reflect"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// ModulePath is the namespace the built-in optimizers register under.
const ModulePath = "github.com/relic-ml/relic/optim"

// RegisterTypes registers the package's optimizers for the backend
// type B. Call once at process start, alongside nn.RegisterTypes.
func RegisterTypes[B tensor.Backend]() error {
	sgdKey := loadable.Key{Module: ModulePath, Qualname: "SGD"}
	err := loadable.Register(sgdKey, reflect.TypeOf((*SGD[B])(nil)),
		func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
			b, err := backendAs[B](backend)
			if err != nil {
				return nil, err
			}
			lr, err := loadable.FloatKwarg(kwargs, "lr", 0.01)
			if err != nil {
				return nil, err
			}
			momentum, err := loadable.FloatKwarg(kwargs, "momentum", 0)
			if err != nil {
				return nil, err
			}
			return NewSGD[B](nil, SGDConfig{
				LR:       float32(lr),
				Momentum: float32(momentum),
			}, b), nil
		})
	if err != nil {
		return err
	}

	adamKey := loadable.Key{Module: ModulePath, Qualname: "Adam"}
	return loadable.Register(adamKey, reflect.TypeOf((*Adam[B])(nil)),
		func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
			b, err := backendAs[B](backend)
			if err != nil {
				return nil, err
			}
			lr, err := loadable.FloatKwarg(kwargs, "lr", 0.001)
			if err != nil {
				return nil, err
			}
			beta1, err := loadable.FloatKwarg(kwargs, "beta1", 0.9)
			if err != nil {
				return nil, err
			}
			beta2, err := loadable.FloatKwarg(kwargs, "beta2", 0.999)
			if err != nil {
				return nil, err
			}
			eps, err := loadable.FloatKwarg(kwargs, "eps", 1e-8)
			if err != nil {
				return nil, err
			}
			return NewAdam[B](nil, AdamConfig{
				LR:    float32(lr),
				Betas: [2]float32{float32(beta1), float32(beta2)},
				Eps:   float32(eps),
			}, b), nil
		})
}

// MustRegisterTypes is RegisterTypes that panics on error.
func MustRegisterTypes[B tensor.Backend]() {
	if err := RegisterTypes[B](); err != nil {
		panic(err)
	}
}

func backendAs[B tensor.Backend](backend any) (B, error) {
	b, ok := backend.(B)
	if !ok {
		var zero B
		return zero, fmt.Errorf("backend %T does not satisfy %T", backend, zero)
	}
	return b, nil
}
