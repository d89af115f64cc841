// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykawataki/c2c/internal/config"
	"github.com/ykawataki/c2c/internal/output"
	"github.com/ykawataki/c2c/internal/services/clipboard"
	"github.com/ykawataki/c2c/internal/services/stream"
	"github.com/ykawataki/c2c/internal/tokenizer"
	"github.com/ykawataki/c2c/internal/types"
	"github.com/ykawataki/c2c/internal/utils"
)

const (
	exclusionFlagName    = "exclude"
	exclusionFlagShort   = "e"
	noGitignoreFlagName  = "no-gitignore"
	includeGitFlagName   = "git"
	formatFlagName       = "format"
	outputFlagName       = "output"
	copyFlagName         = "copy"
	summaryFlagName      = "summary"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	debugFlagName        = "debug"
	versionFlagName      = "version"
	configFlagName       = "config"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "c2c version: %s\n"
	defaultPath          = "."
	rootUse              = "c2c"
	rootShortDescription = "c2c command line interface"
	rootLongDescription  = `c2c flattens a directory tree into a single text stream.
It walks the tree while honoring .gitignore rules at every level, skips binary
files, and emits each surviving file behind a unique delimiter so the result
can be consumed as one document or parsed back into files.
Use --format to select text or jsonl output, and --version to print the application version.`

	scanUse              = "scan [path]"
	treeUse              = "tree [path]"
	scanAlias            = "s"
	treeAlias            = "t"
	scanShortDescription = "flatten directory contents into one stream (" + scanAlias + ")"
	treeShortDescription = "display the filtered directory tree (" + treeAlias + ")"

	scanLongDescription = `Flatten every text file under a directory into a delimited stream.
Files excluded by .gitignore rules, the --exclude patterns, or binary detection are omitted.`
	scanUsageExample = `  # Flatten the current directory
  c2c scan

  # Exclude vendored code and write to a file
  c2c scan -e vendor --output project.txt .

  # Emit one JSON object per file
  c2c scan --format jsonl .`

	treeLongDescription = `Display the directory tree after all exclusion rules have been applied.
The tree shows exactly the files a scan of the same directory would emit.`
	treeUsageExample = `  # Show the filtered tree with token counts
  c2c tree --tokens .

  # Include the git metadata directory
  c2c tree --git .`

	configUse                       = "config"
	configShortDescription          = "manage configuration"
	configInitUse                   = "init"
	configInitShortDescription      = "write a default configuration file"
	exclusionFlagDescription        = "additional exclude pattern (gitignore format)"
	disableGitignoreFlagDescription = "do not use .gitignore rule files"
	includeGitFlagDescription       = "include the git metadata directory"
	formatFlagDescription           = "output format (text or jsonl)"
	outputFlagDescription           = "write output to file instead of stdout"
	copyFlagDescription             = "copy output to the system clipboard"
	summaryFlagDescription          = "print a summary line to stderr"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	debugFlagDescription            = "enable debug output on stderr"
	versionFlagDescription          = "display application version"
	configFlagDescription           = "path to configuration file"
	globalFlagDescription           = "write the global configuration file"
	forceFlagDescription            = "overwrite an existing configuration file"
	defaultTokenizerModelName       = "gpt-4o"
	invalidFormatMessage            = "invalid format value '%s'"
	unsupportedCommandMessage       = "unsupported command"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatText, types.FormatJSONL:
		return true
	default:
		return false
	}
}

// Execute runs the c2c application.
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
	rootCommand.AddCommand(
		createScanCommand(),
		createTreeCommand(),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// commandOptions stores the flag values shared by the scan and tree commands.
type commandOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	includeGit        bool
	outputFormat      string
	outputFile        string
	copyEnabled       bool
	summaryEnabled    bool
	tokensEnabled     bool
	tokenModel        string
	debugEnabled      bool
	configFilePath    string
}

// addCommonFlags registers the flags shared by the scan and tree commands.
func addCommonFlags(command *cobra.Command, options *commandOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagShort, nil, exclusionFlagDescription)
	command.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	command.Flags().BoolVar(&options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	command.Flags().StringVar(&options.outputFormat, formatFlagName, types.FormatText, formatFlagDescription)
	command.Flags().StringVar(&options.outputFile, outputFlagName, "", outputFlagDescription)
	command.Flags().BoolVar(&options.copyEnabled, copyFlagName, false, copyFlagDescription)
	command.Flags().BoolVar(&options.summaryEnabled, summaryFlagName, false, summaryFlagDescription)
	command.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&options.tokenModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	command.Flags().BoolVar(&options.debugEnabled, debugFlagName, false, debugFlagDescription)
	command.Flags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
}

// createScanCommand returns the scan subcommand.
func createScanCommand() *cobra.Command {
	var options commandOptions

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runTool(command, types.CommandScan, arguments, options)
		},
	}
	addCommonFlags(scanCommand, &options)
	return scanCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand() *cobra.Command {
	var options commandOptions

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runTool(command, types.CommandTree, arguments, options)
		},
	}
	addCommonFlags(treeCommand, &options)
	return treeCommand
}

// createConfigCommand returns the config subcommand with its init action.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}

	var writeGlobal bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initializeError != nil {
				return initializeError
			}
			fmt.Fprintf(command.OutOrStdout(), "configuration written to %s\n", writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)

	configCommand.AddCommand(initCommand)
	return configCommand
}

// effectiveSettings is the merged result of configuration files and flags.
type effectiveSettings struct {
	root             string
	exclusions       []string
	disableRuleFiles bool
	includeGit       bool
	format           string
	outputFile       string
	copyEnabled      bool
	summaryEnabled   bool
	tokensEnabled    bool
	tokenModel       string
	debugEnabled     bool
}

// resolveSettings layers command configuration under explicitly set flags.
func resolveSettings(command *cobra.Command, commandName string, arguments []string, options commandOptions) (effectiveSettings, error) {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: options.configFilePath,
	})
	if configurationError != nil {
		return effectiveSettings{}, configurationError
	}

	commandConfiguration := applicationConfiguration.Scan
	if commandName == types.CommandTree {
		commandConfiguration = applicationConfiguration.Tree
	}

	settings := effectiveSettings{
		root:           defaultPath,
		format:         types.FormatText,
		tokenModel:     defaultTokenizerModelName,
		summaryEnabled: commandName == types.CommandTree,
	}
	if len(arguments) > 0 {
		settings.root = arguments[0]
	}

	if commandConfiguration.Format != "" {
		settings.format = commandConfiguration.Format
	}
	if commandConfiguration.Summary != nil {
		settings.summaryEnabled = *commandConfiguration.Summary
	}
	if commandConfiguration.Output != "" {
		settings.outputFile = commandConfiguration.Output
	}
	if commandConfiguration.Clipboard != nil {
		settings.copyEnabled = *commandConfiguration.Clipboard
	}
	if commandConfiguration.Tokens.Enabled != nil {
		settings.tokensEnabled = *commandConfiguration.Tokens.Enabled
	}
	if commandConfiguration.Tokens.Model != "" {
		settings.tokenModel = commandConfiguration.Tokens.Model
	}
	settings.exclusions = append(settings.exclusions, commandConfiguration.Paths.Exclude...)
	if commandConfiguration.Paths.UseGitignore != nil {
		settings.disableRuleFiles = !*commandConfiguration.Paths.UseGitignore
	}
	if commandConfiguration.Paths.IncludeGit != nil {
		settings.includeGit = *commandConfiguration.Paths.IncludeGit
	}

	flags := command.Flags()
	if flags.Changed(formatFlagName) {
		settings.format = options.outputFormat
	}
	if flags.Changed(summaryFlagName) {
		settings.summaryEnabled = options.summaryEnabled
	}
	if flags.Changed(outputFlagName) {
		settings.outputFile = options.outputFile
	}
	if flags.Changed(copyFlagName) {
		settings.copyEnabled = options.copyEnabled
	}
	if flags.Changed(tokensFlagName) {
		settings.tokensEnabled = options.tokensEnabled
	}
	if flags.Changed(modelFlagName) {
		settings.tokenModel = options.tokenModel
	}
	if flags.Changed(noGitignoreFlagName) {
		settings.disableRuleFiles = options.disableGitignore
	}
	if flags.Changed(includeGitFlagName) {
		settings.includeGit = options.includeGit
	}
	settings.exclusions = utils.DeduplicatePatterns(append(settings.exclusions, options.exclusionPatterns...))
	settings.debugEnabled = options.debugEnabled

	settings.format = strings.ToLower(settings.format)
	if !isSupportedFormat(settings.format) {
		return effectiveSettings{}, fmt.Errorf(invalidFormatMessage, settings.format)
	}
	return settings, nil
}

// runTool executes the scan or tree command with the merged settings.
func runTool(command *cobra.Command, commandName string, arguments []string, options commandOptions) (err error) {
	settings, settingsError := resolveSettings(command, commandName, arguments, options)
	if settingsError != nil {
		return settingsError
	}

	logger, loggerError := utils.NewApplicationLogger(settings.debugEnabled)
	if loggerError != nil {
		return loggerError
	}
	defer func() {
		_ = logger.Sync()
	}()

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if settings.tokensEnabled {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: settings.tokenModel})
		if counterError != nil {
			return counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	destination, closeDestination, destinationError := openDestination(settings.outputFile)
	if destinationError != nil {
		return destinationError
	}
	defer func() {
		if closeError := closeDestination(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	var copyBuffer *bytes.Buffer
	stdout := destination
	if settings.copyEnabled {
		copyBuffer = &bytes.Buffer{}
		stdout = io.MultiWriter(destination, copyBuffer)
	}

	renderer, rendererError := createRenderer(commandName, settings, stdout)
	if rendererError != nil {
		return rendererError
	}

	runError := runStream(context.Background(), commandName, settings, tokenCounter, tokenModel, logger, renderer)
	if flushError := renderer.Flush(); flushError != nil && runError == nil {
		runError = flushError
	}
	if runError != nil {
		return runError
	}

	if copyBuffer != nil {
		if copyError := clipboard.NewService().Copy(copyBuffer.String()); copyError != nil {
			logger.Warn("clipboard copy failed", zap.Error(copyError))
		}
	}
	return nil
}

// createRenderer selects the renderer for the command and format.
func createRenderer(commandName string, settings effectiveSettings, stdout io.Writer) (output.StreamRenderer, error) {
	switch commandName {
	case types.CommandTree:
		return output.NewTreeStreamRenderer(stdout, os.Stderr, settings.summaryEnabled), nil
	case types.CommandScan:
		switch settings.format {
		case types.FormatJSONL:
			return output.NewJSONLStreamRenderer(stdout, os.Stderr, settings.summaryEnabled), nil
		default:
			return output.NewTextStreamRenderer(stdout, os.Stderr, output.NewDelimiter(), settings.summaryEnabled), nil
		}
	default:
		return nil, errors.New(unsupportedCommandMessage)
	}
}

// runStream wires the event producer to the renderer through a channel.
func runStream(
	ctx context.Context,
	commandName string,
	settings effectiveSettings,
	tokenCounter tokenizer.Counter,
	tokenModel string,
	logger *zap.Logger,
	renderer output.StreamRenderer,
) error {
	producer := func(streamCtx context.Context, events chan<- stream.Event) error {
		switch commandName {
		case types.CommandScan:
			return stream.StreamScan(streamCtx, stream.ScanOptions{
				Root:             settings.root,
				ExcludePatterns:  settings.exclusions,
				DisableRuleFiles: settings.disableRuleFiles,
				IncludeGit:       settings.includeGit,
				TokenCounter:     tokenCounter,
				TokenModel:       tokenModel,
				Logger:           logger,
			}, events)
		case types.CommandTree:
			return stream.StreamTree(streamCtx, stream.TreeOptions{
				Root:             settings.root,
				ExcludePatterns:  settings.exclusions,
				DisableRuleFiles: settings.disableRuleFiles,
				IncludeGit:       settings.includeGit,
				TokenCounter:     tokenCounter,
				TokenModel:       tokenModel,
				Logger:           logger,
			}, events)
		default:
			return errors.New(unsupportedCommandMessage)
		}
	}

	return dispatchStream(ctx, producer, renderer.Handle)
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if consumeError := consume(event); consumeError != nil {
					return consumeError
				}
			}
		}
	})

	if waitError := group.Wait(); waitError != nil && !errors.Is(waitError, context.Canceled) {
		return waitError
	}
	return nil
}

// openDestination returns the output writer and a close function for it.
func openDestination(outputFile string) (io.Writer, func() error, error) {
	if outputFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	fileHandle, createError := os.Create(outputFile)
	if createError != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", outputFile, createError)
	}
	return fileHandle, fileHandle.Close, nil
}
