// Package catalog фильтрует и агрегирует записи товаров, полученные из фида.
package catalog

import (
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
)

// Filter — необязательные условия отбора. Нулевое значение пропускает все записи.
type Filter struct {
	Producer string // подстрока производителя без учета регистра; пустая — без ограничения
	MinStock *int   // минимальный остаток включительно; nil — без ограничения
}

// Apply возвращает записи, удовлетворяющие фильтру, сохраняя порядок. Исходный срез не изменяется.
func (f Filter) Apply(products []domain.Product) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(f.Producer))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Producer), needle) {
			continue
		}
		if f.MinStock != nil && p.Stock < *f.MinStock {
			continue
		}
		out = append(out, p)
	}

	return out
}

// IsZero сообщает, что фильтр не задает ни одного условия.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Producer) == "" && f.MinStock == nil
}
