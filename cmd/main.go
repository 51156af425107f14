package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/edp1096/toy-ddmac/pkg/analysis"
	"github.com/edp1096/toy-ddmac/pkg/deck"
	"github.com/edp1096/toy-ddmac/pkg/system"
	"github.com/edp1096/toy-ddmac/pkg/util"
)

var (
	verbose = flag.Bool("v", false, "print the deck, the system and every solved frequency")
	split   = flag.Bool("split", false, "store all real parts before all imaginary parts")
)

func resultNames(results map[string][]float64, prefix string) []string {
	var names []string
	for name := range results {
		if strings.HasSuffix(name, "_MAG") && strings.HasPrefix(name, prefix) {
			names = append(names, strings.TrimSuffix(name, "_MAG"))
		}
	}
	sort.Strings(names)
	return names
}

func printResults(results map[string][]float64) {
	freqs := results["FREQ"]

	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")
	fmt.Printf("\nAC Analysis Results (%d frequency points):\n", len(freqs))
	fmt.Println("Frequency      Potentials (Magnitude/Phase)        Temperatures (Magnitude/Phase)")
	fmt.Println("-----------------------------------------------------------------------------")

	potentialNames := resultNames(results, "V(")
	temperatureNames := resultNames(results, "T(")

	for i, freq := range freqs {
		fmt.Printf("%-13s", util.FormatFrequency(freq))

		for _, names := range [][]string{potentialNames, temperatureNames} {
			for _, name := range names {
				mag, phase := results[name+"_MAG"], results[name+"_PHASE"]
				fmt.Printf("%s  ", util.FormatPhasor(name, mag[i], phase[i], analysis.Unit(name)))
			}
		}
		fmt.Println()
	}
}

func run(path string) {
	// 1. Open and read deck
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading deck file: %v", err)
	}
	if *verbose {
		fmt.Printf("File contents:\n%s\n", string(content))
	}

	// 2. Parse deck
	d, err := deck.Parse(string(content))
	if err != nil {
		log.Fatalf("Error parsing deck: %v", err)
	}
	if *verbose {
		fmt.Printf("Title: %s\n", d.Title)
		for _, r := range d.Regions {
			fmt.Printf("Region %s: %s, %d nodes, tl=%v\n", r.Name, r.Material, r.Nodes, r.Tl)
		}
		for _, e := range d.Electrodes {
			fmt.Printf("Electrode %s at %v, amplitude %s\n", e.Name, e.At, util.FormatValueFactor(e.Amplitude, "V"))
		}
		for _, in := range d.Interfaces {
			fmt.Printf("Interface %v - %v\n", in.A, in.B)
		}
	}

	// 3. Build regions, operating point and boundaries
	var opts []system.Option
	if *split {
		opts = append(opts, system.WithSplitLayout())
	}
	problem, err := deck.Build(d, opts...)
	if err != nil {
		log.Fatalf("Error building system: %v", err)
	}
	if *verbose {
		fmt.Printf("Unknowns: %d (%d real)\n", problem.System.Size(), problem.System.JacobianSize())
	}

	// 4. Setup analyzer
	analyzer, err := deck.NewAnalysis(d)
	if err != nil {
		log.Fatalf("Error creating analysis: %v", err)
	}
	analyzer.Verbose = *verbose

	if err := analyzer.Setup(problem); err != nil {
		log.Fatalf("Analysis setup failed: %v", err)
	}

	// 5. Run analysis
	if err := analyzer.Execute(); err != nil {
		log.Fatalf("Analysis execution failed: %v", err)
	}

	// 6. Print result
	printResults(analyzer.GetResults())
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: ddmac [-v] [-split] <deck_file>")
	}

	run(flag.Arg(0))
}
