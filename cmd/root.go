package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipforge/media-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "media-api",
	Short: "ClipForge Media API server",
	Long: `ClipForge Media API - media ingestion and processing pipeline

Ingests uploaded media files (or remote URLs) and asynchronously derives
transcripts, content analysis, cross-modal insights and highlight clips.

Features:
  • Multipart upload and upload-by-URL ingestion
  • Whisper-compatible transcription with derived audio extraction
  • LLM-backed content analysis and tag generation
  • Speaker, sentiment, topic and keyword insights (concurrent fan-out)
  • Detached highlight reel rendering via ffmpeg`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	// Initialize the configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
