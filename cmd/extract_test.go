package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRecipe = `
name: testbank
marker: "Testbank AG"
locale: de-DE
blocks:
  - type: buy
    start: "Kauf"
    sections:
      - pattern:
          - "Stück (?<shares>[\\d.,]+) (?<name>.*) (?<isin>[A-Z]{2}[A-Z0-9]{9}[0-9])"
      - pattern:
          - "Betrag (?<amount>[\\d.,]+) (?<currency>[A-Z]{3}) am (?<date>\\d{2}\\.\\d{2}\\.\\d{4})"
`

func TestLoadTypes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "testbank.yaml"), []byte(sampleRecipe), 0644); err != nil {
		t.Fatal(err)
	}
	types, err := loadTypes(dir)
	if err != nil {
		t.Fatalf("loadTypes() error = %v", err)
	}
	if len(types) != 1 || types[0].Name != "testbank" {
		t.Errorf("loadTypes() = %v, want the testbank recipe", types)
	}
}

func TestLoadTypesEmptyDir(t *testing.T) {
	if _, err := loadTypes(t.TempDir()); err == nil {
		t.Errorf("loadTypes() on an empty directory must fail")
	}
}

func TestLoadTypesBrokenRecipe(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\nmarker: '('\nblocks: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadTypes(dir); err == nil {
		t.Errorf("loadTypes() accepted a recipe with a broken marker")
	}
}
