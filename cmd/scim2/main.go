package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/provision-tools/scim2/pkg/app"
	"github.com/provision-tools/scim2/pkg/config"
	"github.com/provision-tools/scim2/pkg/model"
	"github.com/provision-tools/scim2/pkg/version"
)

var (
	flagConfigPath string
	flagBaseURL    string
	flagType       string
	flagFilter     string
	flagSortBy     string
	flagStartIndex int
	flagCount      int
)

var rootCmd = &cobra.Command{
	Use:           "scim2 [flags]",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scim2 %s\n", version.GetInfo().Version)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Read the provider discovery endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if err := a.Client.Discover(cmd.Context()); err != nil {
			return err
		}

		return printJSON(map[string]any{
			"serviceProviderConfig": a.Client.ProviderConfig(),
			"resourceTypes":         a.Client.ResourceTypes(),
			"schemas":               a.Client.Schemas(),
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Read a single resource by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		proto, err := prototype(a)
		if err != nil {
			return err
		}

		res, err := a.Client.Query(cmd.Context(), proto, args[0])
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources of one type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		proto, err := prototype(a)
		if err != nil {
			return err
		}

		res, err := a.Client.QueryAll(cmd.Context(), proto, searchRequest())
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

var createCmd = &cobra.Command{
	Use:   "create [file]",
	Short: "Create a resource from a JSON document, stdin by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		payload, err := readPayload(args)
		if err != nil {
			return err
		}

		res, err := a.Client.Create(cmd.Context(), payload)
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

var replaceCmd = &cobra.Command{
	Use:   "replace [file]",
	Short: "Replace a resource with a JSON document, stdin by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		payload, err := readPayload(args)
		if err != nil {
			return err
		}

		res, err := a.Client.Replace(cmd.Context(), payload)
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a resource by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		proto, err := prototype(a)
		if err != nil {
			return err
		}

		return a.Client.Delete(cmd.Context(), proto, args[0])
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search across every resource type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		res, err := a.Client.Search(cmd.Context(), searchRequest())
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

// nolint: gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "config path")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "url", "", "provider base URL, overrides the config file")

	for _, cmd := range []*cobra.Command{getCmd, listCmd, deleteCmd} {
		cmd.Flags().StringVarP(&flagType, "type", "t", "User", "resource type name")
	}

	for _, cmd := range []*cobra.Command{listCmd, searchCmd} {
		cmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "filter expression")
		cmd.Flags().StringVar(&flagSortBy, "sort-by", "", "attribute to sort by")
		cmd.Flags().IntVar(&flagStartIndex, "start-index", 0, "1-based index of the first result")
		cmd.Flags().IntVar(&flagCount, "count", 0, "maximum number of results per page")
	}

	rootCmd.AddCommand(
		discoverCmd,
		getCmd,
		listCmd,
		createCmd,
		replaceCmd,
		deleteCmd,
		searchCmd,
	)
}

func main() {
	rootCmd.AddCommand(
		versionCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err.Error())
	}
}

func newApp() (*app.App, error) {
	cfg, err := config.NewConfig(flagConfigPath)
	if err != nil {
		return nil, err
	}

	if flagBaseURL != "" {
		cfg.Provider.BaseURL = flagBaseURL
	}

	return app.New(cfg)
}

func prototype(a *app.App) (model.Resource, error) {
	reg, ok := a.Client.Registry().LookupName(flagType)
	if !ok {
		return nil, errors.Errorf("unknown resource type %q", flagType)
	}

	return reg.New(), nil
}

func searchRequest() *model.SearchRequest {
	if flagFilter == "" && flagSortBy == "" && flagStartIndex == 0 && flagCount == 0 {
		return nil
	}

	return &model.SearchRequest{
		Filter:     flagFilter,
		SortBy:     flagSortBy,
		StartIndex: flagStartIndex,
		Count:      flagCount,
	}
}

func readPayload(args []string) (model.RawResource, error) {
	in := io.Reader(os.Stdin)

	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open payload file '%s'", args[0])
		}
		defer file.Close()

		in = file
	}

	var payload model.RawResource
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode payload")
	}

	return payload, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
