package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/n807235-alt/formfill/internal/render"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err == nil {
		pdfPath = absPath
	}

	info, err := render.Inspect(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting template: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(info); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("formfields - list the fillable fields of a PDF form template")
	fmt.Println()
	fmt.Println("Use this to check which field names a template exposes before")
	fmt.Println("wiring them into a column mapping.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  formfields form.pdf")
	fmt.Println("  formfields -format json form.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  formfields [OPTIONS] <pdf_file>")
}

func outputResults(info *render.TemplateInfo) error {
	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "text":
		return outputText(info)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(info *render.TemplateInfo) error {
	fmt.Printf("Template: %s\n", info.Path)
	fmt.Printf("Pages: %d\n", info.PageCount)
	fmt.Printf("Encrypted: %t\n", info.Encrypted)
	fmt.Printf("Has text content: %t\n", info.HasText)
	fmt.Println()

	if len(info.FieldNames) == 0 {
		fmt.Println("No form fields detected in the PDF")
		return nil
	}

	fmt.Printf("Found %d form fields:\n", len(info.FieldNames))
	for i, name := range info.FieldNames {
		fmt.Printf("[%d] %s\n", i+1, name)
	}
	return nil
}

func init() {
	flag.Usage = func() {
		printHelp()
	}
}
