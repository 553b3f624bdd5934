package inventory

import "github.com/jhoicas/stockledger-api/internal/domain"

// NextQuantity aplica delta a la cantidad actual (servicio de dominio).
// Devuelve domain.ErrInsufficientStock si el resultado queda negativo; la cantidad nunca baja de cero.
func NextQuantity(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// ValidateMovementQuantity exige cantidad estrictamente positiva (reposición, salida, traslado).
func ValidateMovementQuantity(q int) error {
	if q <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// ResolveMinStockLevel devuelve el umbral a usar en una asignación inicial.
// nil -> DefaultMinStockLevel; negativo -> inválido.
func ResolveMinStockLevel(min *int, def int) (int, error) {
	if min == nil {
		return def, nil
	}
	if *min < 0 {
		return 0, domain.ErrInvalidInput
	}
	return *min, nil
}
