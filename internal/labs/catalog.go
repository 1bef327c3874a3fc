package labs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesikahq/spitalverse/internal/record"
)

// Test is a catalog entry: a named test with its unit and EU reference range.
type Test struct {
	Name        string       `json:"name" yaml:"name"`
	Unit        string       `json:"unit" yaml:"unit"`
	NormalRange record.Range `json:"normalRange" yaml:"normalRange"`
}

type Category struct {
	Key   string `json:"key" yaml:"key"`
	Name  string `json:"name" yaml:"name"`
	Tests []Test `json:"tests" yaml:"tests"`
}

type Catalog struct {
	categories []Category
	popular    []string
	index      map[string]Test
}

func test(name, unit string, min, max float64) Test {
	return Test{Name: name, Unit: unit, NormalRange: mustRange(min, max)}
}

// DefaultCatalog returns the built-in German/EU reference ranges.
func DefaultCatalog() *Catalog {
	categories := []Category{
		{Key: "cbc", Name: "Complete Blood Count (CBC)", Tests: []Test{
			test("Hemoglobin", "g/dL", 12.0, 17.5),
			test("RBC Count", "10⁶/µL", 4.3, 5.9),
			test("WBC Count", "10³/µL", 4.0, 10.0),
			test("Platelets", "10³/µL", 150, 400),
			test("Hematocrit", "%", 40, 52),
			test("MCV", "fL", 80, 96),
			test("MCH", "pg", 27, 33),
			test("MCHC", "g/dL", 32, 36),
		}},
		{Key: "diabetes", Name: "Blood Sugar Profile", Tests: []Test{
			test("Fasting Blood Glucose", "mg/dL", 70, 99),
			test("Random Blood Glucose", "mg/dL", 70, 140),
			test("HbA1c", "%", 4.0, 5.6),
			test("HbA1c (IFCC)", "mmol/mol", 20, 38),
		}},
		{Key: "lipid", Name: "Lipid Profile", Tests: []Test{
			test("Total Cholesterol", "mg/dL", 0, 200),
			test("HDL Cholesterol", "mg/dL", 40, 100),
			test("LDL Cholesterol", "mg/dL", 0, 130),
			test("Triglycerides", "mg/dL", 0, 150),
		}},
		{Key: "thyroid", Name: "Thyroid Profile", Tests: []Test{
			test("TSH", "mIU/L", 0.4, 4.0),
			test("Free T3 (fT3)", "pg/mL", 2.0, 4.4),
			test("Free T4 (fT4)", "ng/dL", 0.9, 1.7),
		}},
		{Key: "vitamins", Name: "Vitamins & Minerals", Tests: []Test{
			test("Vitamin D (25-OH)", "ng/mL", 30, 100),
			test("Vitamin B12", "pg/mL", 200, 900),
			test("Calcium", "mmol/L", 2.2, 2.6),
			test("Iron (Serum)", "µg/dL", 60, 170),
			test("Ferritin", "ng/mL", 15, 400),
		}},
		{Key: "kidney", Name: "Kidney Function (KFT)", Tests: []Test{
			test("Creatinine", "mg/dL", 0.6, 1.2),
			test("Urea", "mg/dL", 10, 50),
			test("Uric Acid", "mg/dL", 2.4, 7.0),
			test("Sodium (Na⁺)", "mmol/L", 135, 145),
			test("Potassium (K⁺)", "mmol/L", 3.5, 5.1),
		}},
		{Key: "liver", Name: "Liver Function (LFT)", Tests: []Test{
			test("ALT (GPT)", "U/L", 0, 50),
			test("AST (GOT)", "U/L", 0, 50),
			test("Alkaline Phosphatase", "U/L", 40, 130),
			test("Total Bilirubin", "mg/dL", 0.2, 1.2),
			test("Albumin", "g/dL", 3.5, 5.0),
		}},
		{Key: "inflammation", Name: "Inflammation Markers", Tests: []Test{
			test("CRP", "mg/L", 0, 5),
			test("ESR", "mm/hr", 0, 20),
		}},
	}
	popular := []string{
		"Hemoglobin", "Fasting Blood Glucose", "HbA1c", "Total Cholesterol",
		"TSH", "Vitamin D (25-OH)", "Creatinine", "ALT (GPT)",
	}
	return newCatalog(categories, popular)
}

func newCatalog(categories []Category, popular []string) *Catalog {
	c := &Catalog{categories: categories, popular: popular}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.index = make(map[string]Test)
	for _, cat := range c.categories {
		for _, t := range cat.Tests {
			c.index[t.Name] = t
		}
	}
}

func (c *Catalog) Categories() []Category {
	return c.categories
}

// Lookup finds a test by exact name.
func (c *Catalog) Lookup(name string) (Test, bool) {
	t, ok := c.index[name]
	return t, ok
}

// Popular returns the quick-add tests in display order.
func (c *Catalog) Popular() []Test {
	out := make([]Test, 0, len(c.popular))
	for _, name := range c.popular {
		if t, ok := c.index[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Search returns tests whose name contains query, case-insensitively.
func (c *Catalog) Search(query string) []Test {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Test{}
	for _, cat := range c.categories {
		for _, t := range cat.Tests {
			if q == "" || strings.Contains(strings.ToLower(t.Name), q) {
				out = append(out, t)
			}
		}
	}
	return out
}

type catalogFile struct {
	Popular    []string   `yaml:"popular"`
	Categories []Category `yaml:"categories"`
}

// LoadCatalogFile extends the built-in catalog with the categories in a YAML
// file. Tests in an existing category replace same-named tests; unknown
// categories are appended.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lab catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse lab catalog: %w", err)
	}

	base := DefaultCatalog()
	categories := base.categories
	for _, ext := range file.Categories {
		for _, t := range ext.Tests {
			if t.Name == "" {
				return nil, fmt.Errorf("lab catalog category %q: test without name", ext.Key)
			}
			if _, err := NewRange(t.NormalRange.Min, t.NormalRange.Max); err != nil {
				return nil, fmt.Errorf("lab catalog test %q: %w", t.Name, err)
			}
		}
		categories = mergeCategory(categories, ext)
	}

	popular := base.popular
	if len(file.Popular) > 0 {
		popular = file.Popular
	}
	return newCatalog(categories, popular), nil
}

func mergeCategory(categories []Category, ext Category) []Category {
	for i, cat := range categories {
		if cat.Key != ext.Key {
			continue
		}
		tests := append([]Test{}, cat.Tests...)
	next:
		for _, t := range ext.Tests {
			for j := range tests {
				if tests[j].Name == t.Name {
					tests[j] = t
					continue next
				}
			}
			tests = append(tests, t)
		}
		categories[i].Tests = tests
		if ext.Name != "" {
			categories[i].Name = ext.Name
		}
		return categories
	}
	return append(categories, ext)
}
