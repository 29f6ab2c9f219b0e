package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// Ventanas por defecto de los indicadores.
const (
	DefaultStatisticsDays   = 365
	DefaultStatisticsMonths = 12
)

// StockStatistics indicadores de permanencia y rotación de inventario. Solo lectura.
type StockStatistics struct {
	tx  TxRunner
	Now func() time.Time
}

// NewStockStatistics construye el servicio.
func NewStockStatistics(tx TxRunner) *StockStatistics {
	return &StockStatistics{tx: tx, Now: time.Now}
}

// StatisticsWindow días hacia atrás para la permanencia y meses (de 30 días) para el giro.
// Valores <= 0 usan los defaults.
type StatisticsWindow struct {
	Days   int
	Months int
}

func (w StatisticsWindow) normalize() StatisticsWindow {
	if w.Days <= 0 {
		w.Days = DefaultStatisticsDays
	}
	if w.Months <= 0 {
		w.Months = DefaultStatisticsMonths
	}
	return w
}

// ProductStatistics fila del informe general.
type ProductStatistics struct {
	ProductID          int64
	SKU                string
	Name               string
	Balance            decimal.Decimal
	AverageDaysInStock decimal.Decimal
	Turnover           decimal.Decimal
}

// AverageDaysInStock permanencia promedio ponderada de los lotes que entraron en los últimos days días.
func (s *StockStatistics) AverageDaysInStock(ctx context.Context, productID int64, days int) (decimal.Decimal, error) {
	w := StatisticsWindow{Days: days}.normalize()
	var avg decimal.Decimal
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		avg, err = s.averageDays(ctx, repos, productID, w, s.Now())
		return err
	})
	return avg, err
}

// Turnover salidas de los últimos months meses sobre el saldo actual.
func (s *StockStatistics) Turnover(ctx context.Context, productID int64, months int) (decimal.Decimal, error) {
	w := StatisticsWindow{Months: months}.normalize()
	var turnover decimal.Decimal
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		bal, err := repos.Balances().Get(ctx, productID)
		if err != nil {
			return err
		}
		turnover, err = s.turnover(ctx, repos, productID, bal.Quantity, w, s.Now())
		return err
	})
	return turnover, err
}

// ProductReport indicadores de un producto. ErrNotFound si no existe.
func (s *StockStatistics) ProductReport(ctx context.Context, productID int64, w StatisticsWindow) (*ProductStatistics, error) {
	w = w.normalize()
	today := s.Now()
	var out *ProductStatistics
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		out, err = s.row(ctx, repos, p, w, today)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Report informe general: una fila por producto activo, en orden de id.
func (s *StockStatistics) Report(ctx context.Context, w StatisticsWindow) ([]ProductStatistics, error) {
	w = w.normalize()
	today := s.Now()
	var out []ProductStatistics
	err := s.tx.Run(ctx, func(repos repository.Repositories) error {
		products, err := repos.Products().ListActive(ctx)
		if err != nil {
			return err
		}
		out = make([]ProductStatistics, 0, len(products))
		for _, p := range products {
			row, err := s.row(ctx, repos, p, w, today)
			if err != nil {
				return err
			}
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StockStatistics) row(ctx context.Context, repos repository.Repositories, p *entity.Product, w StatisticsWindow, today time.Time) (*ProductStatistics, error) {
	bal, err := repos.Balances().Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	avg, err := s.averageDays(ctx, repos, p.ID, w, today)
	if err != nil {
		return nil, err
	}
	turnover, err := s.turnover(ctx, repos, p.ID, bal.Quantity, w, today)
	if err != nil {
		return nil, err
	}
	return &ProductStatistics{
		ProductID:          p.ID,
		SKU:                p.SKU,
		Name:               p.Name,
		Balance:            bal.Quantity,
		AverageDaysInStock: avg,
		Turnover:           turnover,
	}, nil
}

func (s *StockStatistics) averageDays(ctx context.Context, repos repository.Repositories, productID int64, w StatisticsWindow, today time.Time) (decimal.Decimal, error) {
	lots, err := repos.Lots().ListEnteredSince(ctx, productID, startOfDay(today).AddDate(0, 0, -w.Days))
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.WeightedAverageDays(lots, today), nil
}

func (s *StockStatistics) turnover(ctx context.Context, repos repository.Repositories, productID int64, balance decimal.Decimal, w StatisticsWindow, today time.Time) (decimal.Decimal, error) {
	consumed, err := repos.Movements().SumQuantity(ctx, productID, entity.MovementExit, startOfDay(today).AddDate(0, 0, -30*w.Months))
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.Turnover(consumed, balance), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
