package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the fixed set of test identifiers the extractor looks for, in
// the order results are processed. PercentStyle lists the identifiers whose
// values need the conditional space trim before the unit-marker pass.
type Catalog struct {
	Tests        []string `yaml:"tests"`
	PercentStyle []string `yaml:"percentStyle"`
}

// DefaultCatalog returns the built-in morphology panel.
func DefaultCatalog() Catalog {
	return Catalog{
		Tests: []string{
			"WBC",
			"NEU%",
			"LYMPH%",
			"MON%",
			"EOS%",
			"BASO",
			"RBC",
			"HGB",
			"HCT",
			"MCV",
			"MCH",
			"MCHC",
			"PLT",
		},
		PercentStyle: []string{"BASO", "NEU%", "LYMPH%", "MON%", "EOS%"},
	}
}

// LoadCatalog reads a catalog from a YAML file. A file that lists tests but
// no percentStyle keeps the built-in percent-style set.
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Tests) == 0 {
		return Catalog{}, fmt.Errorf("catalog %s lists no tests", path)
	}
	if len(c.PercentStyle) == 0 {
		c.PercentStyle = DefaultCatalog().PercentStyle
	}
	return c, nil
}
