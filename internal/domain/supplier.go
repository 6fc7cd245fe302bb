package domain

// Supplier описывает поставщика из реестра: откуда брать фид и в каком он формате.
type Supplier struct {
	Name        string
	URL         string
	Format      Format
	Description string
}
