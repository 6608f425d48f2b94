package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "threadweaver",
		Short: "Procedural walking city with chatty pedestrians",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(walkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		port     int
		memoryDB string
	)

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Run the live world with the chat proxy and story socket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), projectArg(args), port, memoryDB)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", defaultPort(), "HTTP server port (default from PORT)")
	cmd.Flags().StringVar(&memoryDB, "memory-db", "", "SQLite file for NPC memory (in-process when empty)")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		out     string
		mapOut  string
		frames  int
		seed    int64
		weather string
	)

	cmd := &cobra.Command{
		Use:   "generate [project-path]",
		Short: "Generate a world and write its scene graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(generateOptions{
				project: projectArg(args),
				out:     out,
				mapOut:  mapOut,
				frames:  frames,
				seed:    seed,
				weather: weather,
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "scene output file; .zst compresses (stdout when empty)")
	cmd.Flags().StringVar(&mapOut, "map", "", "minimap JSON output file")
	cmd.Flags().IntVar(&frames, "frames", 0, "simulate this many 60 Hz frames before writing")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the config seed")
	cmd.Flags().StringVar(&weather, "weather", "", "override the weather preset")
	return cmd
}

func validateCmd() *cobra.Command {
	var scenePath string
	cmd := &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a world config without generating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], scenePath)
		},
	}
	cmd.Flags().StringVar(&scenePath, "scene", "", "also check a scene exported by generate (.json or .zst)")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of city.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchema(cmd.OutOrStdout())
		},
	}
}

func walkCmd() *cobra.Command {
	var chatURL string

	cmd := &cobra.Command{
		Use:   "walk [project-path]",
		Short: "Walk a generated city from the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd.InOrStdin(), cmd.OutOrStdout(), projectArg(args), chatURL)
		},
	}

	cmd.Flags().StringVar(&chatURL, "chat-url", "http://localhost:3000", "server hosting /api/chat")
	return cmd
}

func projectArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func defaultPort() int {
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
		return p
	}
	return 3000
}
