// assistctl is a one-shot command line front-end: it reads code from a file
// or stdin, runs a single assistance job, and prints the model's answer to
// stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"codeassist/pkg/agent"
	"codeassist/pkg/assist"
	"codeassist/pkg/config"
	"codeassist/pkg/jobs"
	"codeassist/pkg/specs"
	"codeassist/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}

	switch os.Args[1] {
	case "list":
		printCatalog()
		return nil
	case "version", "-version", "--version":
		fmt.Printf("assistctl %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		return nil
	case "help", "-help", "--help", "-h":
		printUsage()
		return nil
	}

	jobName := os.Args[1]

	cfg := config.DefaultConfig()

	var (
		model       string
		specList    string
		codePath    string
		temperature float64
		maxTokens   int
		timeout     time.Duration

		requirements string
		codeLang     string
		inputType    string
		outputType   string
	)

	flagSet := flag.NewFlagSet("assistctl", flag.ExitOnError)
	flagSet.StringVar(&model, "model", cfg.DefaultModel, "Model to use")
	flagSet.StringVar(&specList, "specs", "", "Comma-separated specification names (see 'assistctl list')")
	flagSet.StringVar(&codePath, "code", "-", "Path to the code file, or '-' for stdin")
	flagSet.Float64Var(&temperature, "temperature", float64(cfg.Generation.DefaultTemperature), "Sampling temperature (0.0-1.0)")
	flagSet.IntVar(&maxTokens, "max-tokens", cfg.Generation.DefaultMaxTokens, "Maximum answer tokens (100-5000)")
	flagSet.DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
	flagSet.StringVar(&requirements, "requirements", "", "Feature requirements (ADDING, IMPLEMENTING)")
	flagSet.StringVar(&codeLang, "code-lang", "", "Target language (IMPLEMENTING, TRANSPILING)")
	flagSet.StringVar(&inputType, "input-type", "", "Desired input type (IMPLEMENTING)")
	flagSet.StringVar(&outputType, "output-type", "", "Desired output type (IMPLEMENTING)")
	flagSet.Usage = printUsage

	if err := flagSet.Parse(os.Args[2:]); err != nil {
		return err
	}

	// API keys may live in a local .env during development.
	_ = godotenv.Load()

	job, err := jobs.Parse(jobName)
	if err != nil {
		return err
	}

	code := ""
	if requiresCode, _ := jobs.RequiresCode(job); requiresCode {
		code, err = readCode(codePath)
		if err != nil {
			return err
		}
	}

	factory := agent.NewClientFactory(cfg.Retry, nil)
	service := assist.NewService(factory, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := service.Generate(ctx, assist.Request{
		Model:          model,
		Job:            job.String(),
		Specifications: splitSpecs(specList),
		Code:           code,
		Temperature:    float32(temperature),
		MaxTokens:      maxTokens,
		Requirements:   requirements,
		CodeLang:       codeLang,
		InputType:      inputType,
		OutputType:     outputType,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	return nil
}

// readCode loads the code input from a file, or stdin when path is "-".
func readCode(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read code from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read code file: %w", err)
	}
	return string(data), nil
}

// splitSpecs turns "COMMENT,DOCSTRING" into a name list, dropping blanks.
func splitSpecs(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printCatalog() {
	fmt.Println("Jobs:")
	for _, job := range jobs.All() {
		requiresCode, _ := jobs.RequiresCode(job)
		codeNote := "requires code"
		if !requiresCode {
			codeNote = "no code input"
		}
		fmt.Printf("  %-13s %s (%s)\n", job, job.Description(), codeNote)
	}
	fmt.Println()
	fmt.Println("Specifications:")
	for _, spec := range specs.All() {
		fmt.Printf("  %s\n", spec)
	}
	fmt.Println()
	fmt.Println("Models:")
	for _, model := range config.ModelNames() {
		fmt.Printf("  %s\n", model)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "assistctl - one-shot code assistance\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s <JOB> [flags]       Run a job (code from -code file or stdin)\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s list                List jobs, specifications, and models\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s version             Print version information\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  %s REFACTORING -code main.py -specs COMMENT,TYPE_ANNOTATION\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  cat main.py | %s EXPLAINING -model claude-3-5-haiku-20241022\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s IMPLEMENTING -requirements 'sort a list of pairs' -code-lang Rust\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s TRANSPILING -code main.py -code-lang Go\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Environment:\n")
	fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, OLLAMA_HOST\n")
}
