package toolchain

import (
	"sort"
	"time"
)

// Receipt records one completed install of a product release.
// Receipts are keyed by product and version prefix: installing a different
// patch release under the same prefix replaces the previous receipt.
type Receipt struct {
	// Product is the catalog name of the toolchain.
	Product string `json:"product"`
	// Version is the full installed version (e.g. "7.5.3").
	Version string `json:"version"`
	// Prefix is the MAJOR.MINOR installation key.
	Prefix string `json:"prefix"`
	// Architecture is the vendor token the artifact was fetched for.
	Architecture string `json:"architecture"`
	// InstallDir is the versioned install directory.
	InstallDir string `json:"install_dir"`
	// Entrypoint is the absolute path of the designated executable.
	Entrypoint string `json:"entrypoint"`
	// InstalledAt is when the install completed.
	InstalledAt time.Time `json:"installed_at"`
}

// Receipts is the collection of install records for one machine.
type Receipts []Receipt

// Upsert replaces the receipt sharing product and prefix, or appends.
func (rs Receipts) Upsert(r Receipt) Receipts {
	for i := range rs {
		if rs[i].Product == r.Product && rs[i].Prefix == r.Prefix {
			rs[i] = r
			return rs
		}
	}

	return append(rs, r)
}

// ForProduct returns the receipts belonging to the named product.
func (rs Receipts) ForProduct(product string) Receipts {
	var result Receipts

	for _, r := range rs {
		if r.Product == product {
			result = append(result, r)
		}
	}

	return result
}

// Sorted returns a copy ordered by product name, then ascending version.
// Receipts with unparseable versions sort first within their product.
func (rs Receipts) Sorted() Receipts {
	result := append(Receipts(nil), rs...)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Product != result[j].Product {
			return result[i].Product < result[j].Product
		}

		vi, errI := ParseVersion(result[i].Version)
		vj, errJ := ParseVersion(result[j].Version)

		switch {
		case errI != nil:
			return errJ == nil
		case errJ != nil:
			return false
		default:
			return vi.LessThan(vj)
		}
	})

	return result
}
