package inventory

import (
	"context"
	"sync"
)

// optimisticUpdate protocolo en tres pasos para cambios que se muestran antes de que el
// backend los confirme: snapshot → apply → confirm | rollback-to-snapshot.
//
// apply corre bajo el lock, toma el snapshot y devuelve la función que lo restaura.
// confirm corre sin el lock (es la llamada de red). Si confirm falla, rollback restaura
// exactamente el valor capturado antes de aplicar, sin volver a consultar al backend.
type optimisticUpdate struct {
	apply   func() (rollback func(), err error)
	confirm func(ctx context.Context) error
}

func (u optimisticUpdate) run(ctx context.Context, mu sync.Locker) error {
	mu.Lock()
	rollback, err := u.apply()
	mu.Unlock()
	if err != nil {
		return err
	}

	if err := u.confirm(ctx); err != nil {
		mu.Lock()
		rollback()
		mu.Unlock()
		return err
	}
	return nil
}
