package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.StockLogRepository = (*StockLogRepo)(nil)

// StockLogRepo ledger append-only sobre PostgreSQL. No existe UPDATE ni DELETE sobre stock_logs.
type StockLogRepo struct {
	q Querier
}

// NewStockLogRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockLogRepository(q Querier) *StockLogRepo {
	return &StockLogRepo{q: q}
}

// Append inserta un asiento.
func (r *StockLogRepo) Append(ctx context.Context, log *entity.StockLog) error {
	query := `
		INSERT INTO stock_logs (id, product_id, warehouse_id, quantity_change, quantity_before, quantity_after,
		                        change_type, user_id, transfer_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.ProductID, log.WarehouseID, log.QuantityChange, log.QuantityBefore, log.QuantityAfter,
		string(log.ChangeType), log.UserID, log.TransferID, log.Timestamp,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenceNotFound
		}
		return fmt.Errorf("insert stock log: %w", classify(err))
	}
	return nil
}

const stockLogSelect = `
	SELECT l.id, l.product_id, l.warehouse_id, l.quantity_change, l.quantity_before, l.quantity_after,
	       l.change_type, l.user_id, l.transfer_id, l.timestamp,
	       COALESCE(u.username, ''), COALESCE(p.name, '')
	FROM stock_logs l
	LEFT JOIN users u ON u.id = l.user_id
	LEFT JOIN products p ON p.id = l.product_id`

// Query devuelve todos los asientos del filtro (sin orden garantizado).
func (r *StockLogRepo) Query(ctx context.Context, filter repository.StockLogFilter) ([]*entity.StockLog, error) {
	where, args := buildStockLogWhere(filter)
	return r.list(ctx, stockLogSelect+where, args...)
}

// Page devuelve la página pedida (timestamp desc) y el total del filtro.
func (r *StockLogRepo) Page(ctx context.Context, filter repository.StockLogFilter, limit, offset int) ([]*entity.StockLog, int, error) {
	where, args := buildStockLogWhere(filter)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_logs l`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock logs: %w", classify(err))
	}
	n := len(args)
	query := stockLogSelect + where +
		` ORDER BY l.timestamp DESC, l.seq DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	items, err := r.list(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *StockLogRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockLog, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock logs: %w", classify(err))
	}
	defer rows.Close()

	out := []*entity.StockLog{}
	for rows.Next() {
		l, err := scanStockLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanStockLog(row pgx.Row) (*entity.StockLog, error) {
	var (
		l          entity.StockLog
		changeType string
	)
	err := row.Scan(
		&l.ID, &l.ProductID, &l.WarehouseID, &l.QuantityChange, &l.QuantityBefore, &l.QuantityAfter,
		&changeType, &l.UserID, &l.TransferID, &l.Timestamp,
		&l.Username, &l.ProductName,
	)
	if err != nil {
		return nil, err
	}
	l.ChangeType = entity.ChangeType(changeType)
	l.Timestamp = l.Timestamp.UTC()
	return &l, nil
}

// buildStockLogWhere arma la cláusula WHERE con parámetros posicionales.
func buildStockLogWhere(f repository.StockLogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.ProductID != "" {
		add("l.product_id = ?", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("l.warehouse_id = ?", f.WarehouseID)
	}
	if f.ChangeType != nil {
		add("l.change_type = ?", string(*f.ChangeType))
	}
	if f.From != nil {
		add("l.timestamp >= ?", *f.From)
	}
	if f.To != nil {
		add("l.timestamp <= ?", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
