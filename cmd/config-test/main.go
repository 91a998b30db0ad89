package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/chrissnell/hilal/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.Open(*sqliteFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening SQLite config: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	same := compare(yamlConfig, sqliteConfig)

	fmt.Println("\nTest completed!")
	if !same {
		os.Exit(1)
	}
}

func compare(yaml, sqlite *config.ConfigData) bool {
	same := true

	fmt.Printf("Locations - YAML: %d, SQLite: %d\n", len(yaml.Locations), len(sqlite.Locations))
	if len(yaml.Locations) == len(sqlite.Locations) {
		fmt.Println("✓ Location count matches")
		for i, y := range yaml.Locations {
			if y == sqlite.Locations[i] {
				fmt.Printf("✓ Location %s matches\n", y.Name)
			} else {
				fmt.Printf("✗ Location %s differs\n", y.Name)
				fmt.Printf("    YAML:   %+v\n    SQLite: %+v\n", y, sqlite.Locations[i])
				same = false
			}
		}
	} else {
		fmt.Println("✗ Location count mismatch")
		same = false
	}

	if reflect.DeepEqual(yaml.Engine, sqlite.Engine) {
		fmt.Println("✓ Engine settings match")
	} else {
		fmt.Println("✗ Engine settings differ")
		same = false
	}

	names := make([]string, 0, len(yaml.Criteria))
	for name := range yaml.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if reflect.DeepEqual(yaml.Criteria[name], sqlite.Criteria[name]) {
			fmt.Printf("✓ Criterion %s matches\n", name)
		} else {
			fmt.Printf("✗ Criterion %s differs\n", name)
			same = false
		}
	}
	if len(yaml.Criteria) != len(sqlite.Criteria) {
		fmt.Printf("✗ Criteria count mismatch - YAML: %d, SQLite: %d\n", len(yaml.Criteria), len(sqlite.Criteria))
		same = false
	}

	return same
}
