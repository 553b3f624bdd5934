package memory

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks con repositorios atados a una copia del estado.
// Commit = publicar la copia; cualquier error (o ctx cancelado) la descarta.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run serializa las transacciones; el estado intermedio nunca es visible para otros lectores.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	logRepo repository.StockLogWriter,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.state.clone()
	tx := &txStore{state: work}
	if err := fn(&InventoryRepo{db: tx}, &StockLogRepo{db: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.state = work
	return nil
}

// txStore acceso directo a un estado de trabajo (ya bajo el lock del runner).
type txStore struct {
	state *state
}

func (t *txStore) view(fn func(st *state)) { fn(t.state) }

// update dentro de la transacción escribe directo sobre la copia; el rollback lo hace Run.
func (t *txStore) update(fn func(st *state) error) error { return fn(t.state) }
