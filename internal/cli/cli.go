// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phunterlau/flattex/internal/config"
	"github.com/phunterlau/flattex/internal/output"
	"github.com/phunterlau/flattex/internal/project"
	"github.com/phunterlau/flattex/internal/services/clipboard"
	"github.com/phunterlau/flattex/internal/texio"
	"github.com/phunterlau/flattex/internal/tokenizer"
	"github.com/phunterlau/flattex/internal/types"
	"github.com/phunterlau/flattex/internal/utils"
)

const (
	outputFlagName    = "output"
	outputFlagShort   = "o"
	noBibFlagName     = "no-bib"
	formatFlagName    = "format"
	tokensFlagName    = "tokens"
	modelFlagName     = "model"
	clipboardFlagName = "copy"
	configFlagName    = "config"
	versionFlagName   = "version"
	versionTemplate   = "flattex version: %s\n"
	defaultPath       = "."

	rootUse              = "flattex"
	rootShortDescription = "flattex command line interface"
	rootLongDescription  = `flattex flattens a multi-file LaTeX project into one self-contained document.
All \input and \include directives are resolved recursively and the BibTeX
entries for every cited key are appended to the output.`

	expandUse              = "expand [path]"
	expandAlias            = "x"
	expandShortDescription = "flatten a LaTeX project (" + expandAlias + ")"
	expandLongDescription  = `Flatten the LaTeX project at the given file or directory path.
A directory is searched for the file containing \begin{document}.
Use --format to select the raw or json run report.`
	expandUsageExample = `  # Flatten the project in the current directory
  flattex expand .

  # Flatten a specific main file, skipping bibliography processing
  flattex expand paper/main.tex --no-bib

  # Report the token footprint of the flattened artifact
  flattex expand . --tokens --model gpt-4o`

	versionFlagDescription   = "display application version"
	outputFlagDescription    = "output file path"
	noBibFlagDescription     = "skip bibliography processing"
	formatFlagDescription    = "run report format"
	tokensFlagDescription    = "include token count of the flattened document"
	modelFlagDescription     = "tokenizer model to use for token counting"
	clipboardFlagDescription = "copy the flattened document to the clipboard"
	configFlagDescription    = "configuration file path"

	defaultTokenizerModelName = "gpt-4o"
	invalidFormatMessage      = "invalid format value '%s'"
	warningTokenCountFormat   = "Warning: failed to count tokens: %v\n"
	warningClipboardFormat    = "Warning: failed to copy to clipboard: %v\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the flattex application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(createExpandCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// expandOptions stores the flag values of the expand command.
type expandOptions struct {
	outputPath       string
	skipBibliography bool
	reportFormat     string
	countTokens      bool
	tokenizerModel   string
	copyToClipboard  bool
	configPath       string
}

// createExpandCommand returns the expand subcommand.
func createExpandCommand() *cobra.Command {
	var options expandOptions

	expandCommand := &cobra.Command{
		Use:     expandUse,
		Aliases: []string{expandAlias},
		Short:   expandShortDescription,
		Long:    expandLongDescription,
		Example: expandUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			inputPath := defaultPath
			if len(arguments) == 1 {
				inputPath = arguments[0]
			}
			resolvedOptions, resolveError := resolveExpandOptions(command, options)
			if resolveError != nil {
				return resolveError
			}
			return runExpand(inputPath, resolvedOptions)
		},
	}

	expandCommand.Flags().StringVarP(&options.outputPath, outputFlagName, outputFlagShort, "", outputFlagDescription)
	expandCommand.Flags().BoolVar(&options.skipBibliography, noBibFlagName, false, noBibFlagDescription)
	expandCommand.Flags().StringVar(&options.reportFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	expandCommand.Flags().BoolVar(&options.countTokens, tokensFlagName, false, tokensFlagDescription)
	expandCommand.Flags().StringVar(&options.tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	expandCommand.Flags().BoolVar(&options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	expandCommand.Flags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	return expandCommand
}

// resolveExpandOptions overlays configuration file defaults under
// explicitly set flags. A flag changed on the command line always wins
// over the configuration file.
func resolveExpandOptions(command *cobra.Command, options expandOptions) (expandOptions, error) {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return expandOptions{}, loadError
	}

	resolved := options
	expandConfiguration := configuration.Expand
	if !command.Flags().Changed(outputFlagName) && expandConfiguration.Output != "" {
		resolved.outputPath = expandConfiguration.Output
	}
	if !command.Flags().Changed(noBibFlagName) && expandConfiguration.SkipBibliography != nil {
		resolved.skipBibliography = *expandConfiguration.SkipBibliography
	}
	if !command.Flags().Changed(formatFlagName) && expandConfiguration.Format != "" {
		resolved.reportFormat = expandConfiguration.Format
	}
	if !command.Flags().Changed(tokensFlagName) && expandConfiguration.Tokens.Enabled != nil {
		resolved.countTokens = *expandConfiguration.Tokens.Enabled
	}
	if !command.Flags().Changed(modelFlagName) && expandConfiguration.Tokens.Model != "" {
		resolved.tokenizerModel = expandConfiguration.Tokens.Model
	}
	if !command.Flags().Changed(clipboardFlagName) && expandConfiguration.Clipboard != nil {
		resolved.copyToClipboard = *expandConfiguration.Clipboard
	}

	if !isSupportedFormat(resolved.reportFormat) {
		return expandOptions{}, fmt.Errorf(invalidFormatMessage, resolved.reportFormat)
	}
	return resolved, nil
}

// runExpand performs one flattening run and prints the run report.
func runExpand(inputPath string, options expandOptions) error {
	applicationLogger, loggerError := utils.NewApplicationLogger()
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer applicationLogger.Sync()

	fileSystem := texio.NewOSFileSystem()
	runner := project.NewRunner(fileSystem, applicationLogger)
	document, runError := runner.Run(inputPath, project.Options{
		SkipBibliography: options.skipBibliography,
		OutputName:       options.outputPath,
	})
	if runError != nil {
		return runError
	}

	if options.countTokens {
		tokenCounter, resolvedModelName, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenizerModel})
		if counterError != nil {
			fmt.Fprintf(os.Stderr, warningTokenCountFormat, counterError)
		} else if tokenCount, countError := tokenCounter.CountString(document.Text); countError != nil {
			fmt.Fprintf(os.Stderr, warningTokenCountFormat, countError)
		} else {
			document.Tokens = tokenCount
			document.TokenModel = resolvedModelName
		}
	}

	if writeError := fileSystem.WriteText(document.OutputPath, document.Text); writeError != nil {
		return fmt.Errorf("write output %s: %w", document.OutputPath, writeError)
	}
	applicationLogger.Info("Wrote flattened document: " + document.OutputPath)

	if options.copyToClipboard {
		if copyError := clipboard.NewService().Copy(document.Text); copyError != nil {
			fmt.Fprintf(os.Stderr, warningClipboardFormat, copyError)
		}
	}

	switch options.reportFormat {
	case types.FormatJSON:
		renderedReport, renderError := output.RenderRunReportJSON(document)
		if renderError != nil {
			return renderError
		}
		fmt.Println(renderedReport)
	default:
		fmt.Print(output.RenderRunReportRaw(document))
	}
	return nil
}
