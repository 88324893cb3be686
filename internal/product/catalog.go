package product

import (
	"context"
	"strconv"
)

// defaultCatalog is the factory's stock product list, seeded the first time
// an empty store comes up so a fresh install is usable without admin work.
var defaultCatalog = map[string][]string{
	"pt": {
		"PT LEVE", "PT FIT", "PT VIP", "PT B.BRASIL", "PT DUPAPEL",
		"PT STAR", "PT MAX", "PT SUPREME", "PT CREME", "PT ESSENCE 2-A",
		"PT TOP", "PT CAI-CAI", "PT CAI-CAI 22GR", "PT LISSE", "PT CLEAN",
		"PT CX MAPEL",
	},
	"ph": {
		"PH ESSENCE", "PH ESSENCE LIGHT", "PH ESSENCE JR", "PH CLASSIC",
		"PH CLASSIC LIGHT", "PH SENSAÇÃO 200", "PH CLASSIC LIGHT 500M",
		"PH CLAS-EVID 500M", "PH CLASSIC JR", "PH SENSAÇÃO 250",
		"PH ESSENCE 500",
	},
	"tb": {
		"TB LEVE", "TB MAX", "TB FIT", "TB SUPREME", "TB PRÓ", "TB TOP",
		"TB B BRASIL ECO", "TB B BRASIL SUP", "TB ECO", "TB ULTRA",
	},
	"st": {
		"TALHER KRAFT 16X27", "TALHER MONO 16X27", "SACO KRAFT 1 KG",
		"SACO KRAFT 2 KG", "SACO KRAFT 5 KG", "SACO KRAFT 7,5 KG",
		"SACO MIX 2KG", "SACO MIX 1 KG",
	},
	"gn": {
		"GUARD 32X32 SENS BR", "GUARD 29X29 CLASSIC", "GUARD 23X23 GOL",
		"GUARD 40X40 FD", "GUARD 29X29 ESSENCE", "GUARD 18X20 ESSENCE LIGHT",
		"GUARD 19,5X19,5 CLASSIC", "GUARD 18X20 CLASSIC LIGHT",
		"GUARD 14X14 BRASILEIRINHO",
	},
}

// SeedDefaults populates an empty store with the default catalog. A store
// that already has products is left untouched.
func SeedDefaults(ctx context.Context, store Store) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, category := range Categories {
		for i, name := range defaultCatalog[category] {
			p := &Product{
				ProductID: categoryProductID(category, i+1),
				Name:      name,
				Category:  category,
				Unit:      "un",
				Active:    true,
			}
			if err := store.Create(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func categoryProductID(category string, n int) string {
	return category + "_" + strconv.Itoa(n)
}
