package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.StockLogRepository = (*StockLogRepo)(nil)

// StockLogRepo ledger append-only en memoria.
type StockLogRepo struct {
	db access
}

// NewStockLogRepo repositorio en modo autocommit sobre el almacén.
func NewStockLogRepo(store *Store) *StockLogRepo {
	return &StockLogRepo{db: store}
}

func (r *StockLogRepo) Append(ctx context.Context, log *entity.StockLog) error {
	return r.db.update(func(st *state) error {
		st.seq++
		st.logs = append(st.logs, storedLog{seq: st.seq, log: *log})
		return nil
	})
}

func (r *StockLogRepo) Query(ctx context.Context, filter repository.StockLogFilter) ([]*entity.StockLog, error) {
	out := []*entity.StockLog{}
	for _, s := range r.matching(filter) {
		out = append(out, s.log)
	}
	return out, nil
}

// Page ordena por timestamp descendente y, a igual timestamp, por orden de inserción descendente.
func (r *StockLogRepo) Page(ctx context.Context, filter repository.StockLogFilter, limit, offset int) ([]*entity.StockLog, int, error) {
	rows := r.matching(filter)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].log.Timestamp.Equal(rows[j].log.Timestamp) {
			return rows[i].log.Timestamp.After(rows[j].log.Timestamp)
		}
		return rows[i].seq > rows[j].seq
	})
	total := len(rows)
	out := []*entity.StockLog{}
	if offset < 0 || offset >= total {
		return out, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	for _, row := range rows[offset:end] {
		out = append(out, row.log)
	}
	return out, total, nil
}

type joinedLog struct {
	seq int64
	log *entity.StockLog
}

func (r *StockLogRepo) matching(f repository.StockLogFilter) []joinedLog {
	var rows []joinedLog
	r.db.view(func(st *state) {
		for _, s := range st.logs {
			l := s.log
			if f.ProductID != "" && l.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
				continue
			}
			if f.ChangeType != nil && l.ChangeType != *f.ChangeType {
				continue
			}
			if f.From != nil && l.Timestamp.Before(*f.From) {
				continue
			}
			if f.To != nil && l.Timestamp.After(*f.To) {
				continue
			}
			if p, ok := st.products[l.ProductID]; ok {
				l.ProductName = p.Name
			}
			if l.UserID != nil {
				if u, ok := st.users[*l.UserID]; ok {
					l.Username = u.Username
				}
			}
			rows = append(rows, joinedLog{seq: s.seq, log: &l})
		}
	})
	return rows
}
