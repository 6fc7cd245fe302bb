package catalog

import (
	"sort"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary — сводные показатели по набору записей.
type Summary struct {
	TotalProducts int             `json:"total_products"`
	TotalStock    int             `json:"total_stock"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	AverageStock  float64         `json:"average_stock"`
	WithStock     int             `json:"with_stock"`
	Producers     []ProducerStat  `json:"producers"`
}

// ProducerStat — показатели одного производителя.
type ProducerStat struct {
	Producer     string  `json:"producer"`
	Count        int     `json:"count"`
	TotalStock   int     `json:"total_stock"`
	AverageStock float64 `json:"average_stock"`
}

// Aggregate считает сводку за один проход. Пустой вход дает нулевую сводку.
// Производители упорядочены по убыванию числа товаров, при равенстве — по имени.
func Aggregate(products []domain.Product) Summary {
	s := Summary{
		AveragePrice: decimal.Zero,
		Producers:    []ProducerStat{},
	}
	if len(products) == 0 {
		return s
	}

	priceSum := decimal.Zero
	byProducer := make(map[string]*ProducerStat)

	for _, p := range products {
		s.TotalProducts++
		s.TotalStock += p.Stock
		priceSum = priceSum.Add(p.PriceGross)
		if p.InStock() {
			s.WithStock++
		}

		st, ok := byProducer[p.Producer]
		if !ok {
			st = &ProducerStat{Producer: p.Producer}
			byProducer[p.Producer] = st
		}
		st.Count++
		st.TotalStock += p.Stock
	}

	n := decimal.NewFromInt(int64(s.TotalProducts))
	s.AveragePrice = priceSum.Div(n).Round(2)
	s.AverageStock = float64(s.TotalStock) / float64(s.TotalProducts)

	s.Producers = make([]ProducerStat, 0, len(byProducer))
	for _, st := range byProducer {
		st.AverageStock = float64(st.TotalStock) / float64(st.Count)
		s.Producers = append(s.Producers, *st)
	}

	sort.Slice(s.Producers, func(i, j int) bool {
		a, b := s.Producers[i], s.Producers[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Producer < b.Producer
	})

	return s
}

// ProducerNames возвращает отсортированный список уникальных непустых производителей.
func ProducerNames(products []domain.Product) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)

	for _, p := range products {
		if p.Producer == "" {
			continue
		}
		if _, ok := seen[p.Producer]; ok {
			continue
		}
		seen[p.Producer] = struct{}{}
		names = append(names, p.Producer)
	}

	sort.Strings(names)
	return names
}
