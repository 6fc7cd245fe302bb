package cfg

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/jimlawless/whereami"
	"gopkg.in/yaml.v3"
)

//go:embed suppliers.yaml
var defaultSuppliers []byte

type suppliersFile struct {
	Suppliers []supplierEntry `yaml:"suppliers"`
}

type supplierEntry struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Format      string `yaml:"format"`
	Description string `yaml:"description"`
}

// LoadSuppliers читает реестр поставщиков из файла или, если путь пуст, из встроенного реестра.
func LoadSuppliers(path string) ([]domain.Supplier, error) {
	data := defaultSuppliers
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		data = b
	}

	return ParseSuppliers(data)
}

// ParseSuppliers разбирает YAML реестра. ${VAR} в URL раскрываются из окружения.
func ParseSuppliers(data []byte) ([]domain.Supplier, error) {
	var file suppliersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	seen := make(map[string]struct{}, len(file.Suppliers))
	suppliers := make([]domain.Supplier, 0, len(file.Suppliers))

	for _, s := range file.Suppliers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("supplier without name"))
		}
		if _, ok := seen[name]; ok {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("duplicate supplier %q", name))
		}
		seen[name] = struct{}{}

		format, ok := domain.ParseFormat(s.Format)
		if !ok {
			return nil, e.Wrap(fmt.Sprintf("supplier %q format %q", name, s.Format), e.ErrUnknownSupplierFormat)
		}

		suppliers = append(suppliers, domain.Supplier{
			Name:        name,
			URL:         strings.TrimSpace(os.ExpandEnv(s.URL)),
			Format:      format,
			Description: s.Description,
		})
	}

	return suppliers, nil
}
