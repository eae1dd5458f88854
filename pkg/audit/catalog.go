package audit

import (
	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/pii"
)

// BuildCatalog returns the built-in catalog extended with the configured
// custom tags, which are tried after every built-in entry.
func BuildCatalog(custom []config.CustomTagConfig) (*pii.Catalog, error) {
	catalog := pii.DefaultCatalog()
	if len(custom) == 0 {
		return catalog, nil
	}

	specs := make([]pii.CatalogEntrySpec, len(custom))
	for i, c := range custom {
		specs[i] = pii.CatalogEntrySpec{
			Tag:          c.Tag,
			NamePattern:  c.NamePattern,
			ValuePattern: c.ValuePattern,
		}
	}
	return catalog.Extend(specs)
}
