package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxConflictRetries reintentos ante domain.ErrConcurrencyConflict antes de devolver el error.
const MaxConflictRetries = 1

// Nombres de operación (span, log y etiqueta de métricas).
const (
	OpRestock           = "restock"
	OpDeplete           = "deplete"
	OpTransfer          = "transfer"
	OpInitialAssignment = "initial_assignment"
)

var tracer = otel.Tracer("github.com/jhoicas/stockledger-api/internal/application/inventory")

// MovementInput entrada de reposición o salida. UserID es el actor (opcional) que queda en el ledger.
type MovementInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	UserID      *string
}

// TransferInput traslado de Quantity unidades entre dos bodegas distintas.
type TransferInput struct {
	ProductID              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Quantity               int
	UserID                 *string
}

// InitialAssignmentInput alta de un producto en una bodega. MinStockLevel nil = entity.DefaultMinStockLevel.
type InitialAssignmentInput struct {
	ProductID     string
	WarehouseID   string
	Quantity      int
	MinStockLevel *int
	UserID        *string
}

// MovementResult registro resultante y asiento escrito.
type MovementResult struct {
	Record *entity.InventoryRecord
	Entry  *entity.StockLog
}

// TransferResult ambos registros y los dos asientos (TransferOut, TransferIn) con el mismo TransferID.
type TransferResult struct {
	TransferID  string
	Source      *entity.InventoryRecord
	Destination *entity.InventoryRecord
	Entries     []*entity.StockLog
}

// StockMovementUseCase único punto que muta cantidades de inventario.
// Cada operación valida, muta con control de versión y escribe el ledger en la misma transacción.
type StockMovementUseCase struct {
	txRunner      TxRunner
	invRepo       repository.InventoryRepository
	warehouseRepo repository.WarehouseRepository
	log           *logger.Logger
	recorder      MovementRecorder
	now           func() time.Time
}

// Option configura dependencias opcionales del motor.
type Option func(*StockMovementUseCase)

// WithRecorder registra métricas de cada movimiento.
func WithRecorder(r MovementRecorder) Option {
	return func(uc *StockMovementUseCase) { uc.recorder = r }
}

// WithClock reemplaza time.Now (pruebas).
func WithClock(now func() time.Time) Option {
	return func(uc *StockMovementUseCase) { uc.now = now }
}

// NewStockMovementUseCase construye el motor. invRepo es el repositorio fuera de transacción (lecturas).
func NewStockMovementUseCase(
	txRunner TxRunner,
	invRepo repository.InventoryRepository,
	warehouseRepo repository.WarehouseRepository,
	log *logger.Logger,
	opts ...Option,
) *StockMovementUseCase {
	uc := &StockMovementUseCase{
		txRunner:      txRunner,
		invRepo:       invRepo,
		warehouseRepo: warehouseRepo,
		log:           log,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Restock suma Quantity al registro existente y escribe un asiento Restock.
func (uc *StockMovementUseCase) Restock(ctx context.Context, in MovementInput) (res *MovementResult, err error) {
	ctx, done := uc.begin(ctx, OpRestock, attribute.String("product.id", in.ProductID), attribute.String("warehouse.id", in.WarehouseID), attribute.Int("quantity", in.Quantity))
	defer func() { done(err) }()

	if err := validateMovement(in.ProductID, in.WarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	if err := uc.requireWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	err = uc.withRetry(ctx, OpRestock, func() error {
		var txErr error
		res, txErr = uc.applyMovement(ctx, in, in.Quantity, entity.ChangeTypeRestock)
		return txErr
	})
	return res, err
}

// Deplete descuenta Quantity (venta). Falla con domain.ErrInsufficientStock sin tocar el estado.
func (uc *StockMovementUseCase) Deplete(ctx context.Context, in MovementInput) (res *MovementResult, err error) {
	ctx, done := uc.begin(ctx, OpDeplete, attribute.String("product.id", in.ProductID), attribute.String("warehouse.id", in.WarehouseID), attribute.Int("quantity", in.Quantity))
	defer func() { done(err) }()

	if err := validateMovement(in.ProductID, in.WarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	err = uc.withRetry(ctx, OpDeplete, func() error {
		var txErr error
		res, txErr = uc.applyMovement(ctx, in, -in.Quantity, entity.ChangeTypeSale)
		return txErr
	})
	return res, err
}

// applyMovement lee, valida, aplica delta con la versión leída y escribe el asiento (una transacción).
func (uc *StockMovementUseCase) applyMovement(ctx context.Context, in MovementInput, delta int, ct entity.ChangeType) (*MovementResult, error) {
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(invRepo repository.InventoryRepository, logRepo repository.StockLogWriter) error {
		current, err := invRepo.Get(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		if _, err := inventory.NextQuantity(current.Quantity, delta); err != nil {
			return err
		}
		now := uc.now()
		updated, err := invRepo.ApplyDelta(ctx, entity.StockDelta{
			ProductID:       in.ProductID,
			WarehouseID:     in.WarehouseID,
			Delta:           delta,
			ExpectedVersion: current.Version,
			At:              now,
		})
		if err != nil {
			return err
		}
		entry, err := ledger.Append(ctx, logRepo, ledger.AppendInput{
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			Delta:       delta,
			Before:      current.Quantity,
			ChangeType:  ct,
			UserID:      in.UserID,
			At:          now,
		})
		if err != nil {
			return err
		}
		res = &MovementResult{Record: updated, Entry: entry}
		return nil
	})
	return res, err
}

// Transfer mueve stock entre bodegas en una sola transacción. El destino se crea si no existe
// (con el umbral mínimo del origen). Las filas se actualizan en orden ascendente de bodega.
func (uc *StockMovementUseCase) Transfer(ctx context.Context, in TransferInput) (res *TransferResult, err error) {
	ctx, done := uc.begin(ctx, OpTransfer,
		attribute.String("product.id", in.ProductID),
		attribute.String("warehouse.source", in.SourceWarehouseID),
		attribute.String("warehouse.destination", in.DestinationWarehouseID),
		attribute.Int("quantity", in.Quantity))
	defer func() { done(err) }()

	if err := validateMovement(in.ProductID, in.SourceWarehouseID, in.Quantity); err != nil {
		return nil, err
	}
	if in.DestinationWarehouseID == "" || in.DestinationWarehouseID == in.SourceWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireWarehouse(ctx, in.SourceWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.requireWarehouse(ctx, in.DestinationWarehouseID); err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	err = uc.withRetry(ctx, OpTransfer, func() error {
		var txErr error
		res, txErr = uc.transfer(ctx, in, transferID)
		return txErr
	})
	return res, err
}

func (uc *StockMovementUseCase) transfer(ctx context.Context, in TransferInput, transferID string) (*TransferResult, error) {
	var res *TransferResult
	err := uc.txRunner.Run(ctx, func(invRepo repository.InventoryRepository, logRepo repository.StockLogWriter) error {
		source, err := invRepo.Get(ctx, in.ProductID, in.SourceWarehouseID)
		if err != nil {
			return err
		}
		if _, err := inventory.NextQuantity(source.Quantity, -in.Quantity); err != nil {
			return err
		}
		dest, err := invRepo.Get(ctx, in.ProductID, in.DestinationWarehouseID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		destBefore := 0
		if dest != nil {
			destBefore = dest.Quantity
		}

		now := uc.now()
		var newSource, newDest *entity.InventoryRecord
		debit := func() error {
			newSource, err = invRepo.ApplyDelta(ctx, entity.StockDelta{
				ProductID: in.ProductID, WarehouseID: in.SourceWarehouseID,
				Delta: -in.Quantity, ExpectedVersion: source.Version, At: now,
			})
			return err
		}
		credit := func() error {
			if dest == nil {
				created := &entity.InventoryRecord{
					ProductID:     in.ProductID,
					WarehouseID:   in.DestinationWarehouseID,
					Quantity:      in.Quantity,
					MinStockLevel: source.MinStockLevel,
					LastRestocked: now,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := invRepo.Create(ctx, created); err != nil {
					// otro traslado creó el destino entre la lectura y el insert
					if errors.Is(err, domain.ErrDuplicate) {
						return domain.ErrConcurrencyConflict
					}
					return err
				}
				newDest = created
				return nil
			}
			newDest, err = invRepo.ApplyDelta(ctx, entity.StockDelta{
				ProductID: in.ProductID, WarehouseID: in.DestinationWarehouseID,
				Delta: in.Quantity, ExpectedVersion: dest.Version, At: now,
			})
			return err
		}

		steps := []func() error{debit, credit}
		if in.DestinationWarehouseID < in.SourceWarehouseID {
			steps = []func() error{credit, debit}
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		out, err := ledger.Append(ctx, logRepo, ledger.AppendInput{
			ProductID: in.ProductID, WarehouseID: in.SourceWarehouseID,
			Delta: -in.Quantity, Before: source.Quantity,
			ChangeType: entity.ChangeTypeTransferOut, UserID: in.UserID, TransferID: &transferID, At: now,
		})
		if err != nil {
			return err
		}
		inEntry, err := ledger.Append(ctx, logRepo, ledger.AppendInput{
			ProductID: in.ProductID, WarehouseID: in.DestinationWarehouseID,
			Delta: in.Quantity, Before: destBefore,
			ChangeType: entity.ChangeTypeTransferIn, UserID: in.UserID, TransferID: &transferID, At: now,
		})
		if err != nil {
			return err
		}
		res = &TransferResult{
			TransferID:  transferID,
			Source:      newSource,
			Destination: newDest,
			Entries:     []*entity.StockLog{out, inEntry},
		}
		return nil
	})
	return res, err
}

// InitialAssignment crea el registro (producto, bodega) con su cantidad inicial y un asiento InitialStock.
// Errores: domain.ErrDuplicate si ya existe, domain.ErrReferenceNotFound si producto o bodega no existen.
func (uc *StockMovementUseCase) InitialAssignment(ctx context.Context, in InitialAssignmentInput) (res *MovementResult, err error) {
	ctx, done := uc.begin(ctx, OpInitialAssignment, attribute.String("product.id", in.ProductID), attribute.String("warehouse.id", in.WarehouseID), attribute.Int("quantity", in.Quantity))
	defer func() { done(err) }()

	if in.ProductID == "" || in.WarehouseID == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	minLevel, err := inventory.ResolveMinStockLevel(in.MinStockLevel, entity.DefaultMinStockLevel)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(invRepo repository.InventoryRepository, logRepo repository.StockLogWriter) error {
		now := uc.now()
		rec := &entity.InventoryRecord{
			ProductID:     in.ProductID,
			WarehouseID:   in.WarehouseID,
			Quantity:      in.Quantity,
			MinStockLevel: minLevel,
			LastRestocked: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := invRepo.Create(ctx, rec); err != nil {
			return err
		}
		entry, err := ledger.Append(ctx, logRepo, ledger.AppendInput{
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			Delta:       in.Quantity,
			Before:      0,
			ChangeType:  entity.ChangeTypeInitialStock,
			UserID:      in.UserID,
			At:          now,
		})
		if err != nil {
			return err
		}
		res = &MovementResult{Record: rec, Entry: entry}
		return nil
	})
	return res, err
}

// GetInventory devuelve el registro del par o domain.ErrNotFound.
func (uc *StockMovementUseCase) GetInventory(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.Get(ctx, productID, warehouseID)
}

// ListInventory lista paginada de todos los registros y el total.
func (uc *StockMovementUseCase) ListInventory(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, int, error) {
	items, err := uc.invRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.invRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *StockMovementUseCase) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	if err := uc.requireWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	return uc.invRepo.ListByWarehouse(ctx, warehouseID)
}

func (uc *StockMovementUseCase) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.ListByProduct(ctx, productID)
}

// withRetry relee y reintenta ante conflicto de versión. Los errores de validación no se reintentan.
func (uc *StockMovementUseCase) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= MaxConflictRetries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		uc.log.Warn().Str("op", op).Int("attempt", attempt+1).Msg("conflicto de concurrencia, reintentando")
		if uc.recorder != nil {
			uc.recorder.IncConflictRetry(op)
		}
		trace.SpanFromContext(ctx).AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt+1)))
	}
}

// begin abre el span de la operación; done lo cierra, registra el resultado y mide la duración.
func (uc *StockMovementUseCase) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "inventory."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		outcome := Outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()

		if uc.recorder != nil {
			uc.recorder.ObserveMovement(op, outcome, time.Since(start))
		}
		switch outcome {
		case "ok":
			uc.log.Info().Str("op", op).Dur("elapsed", time.Since(start)).Msg("movimiento aplicado")
		case "error":
			uc.log.Error().Err(err).Str("op", op).Msg("movimiento fallido")
		default:
			uc.log.Debug().Err(err).Str("op", op).Str("outcome", outcome).Msg("movimiento rechazado")
		}
	}
}

func (uc *StockMovementUseCase) requireWarehouse(ctx context.Context, id string) error {
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	return nil
}

func validateMovement(productID, warehouseID string, quantity int) error {
	if productID == "" || warehouseID == "" {
		return domain.ErrInvalidInput
	}
	return inventory.ValidateMovementQuantity(quantity)
}

// Outcome clasifica un error del motor en una etiqueta estable para métricas y trazas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
