package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cfgpkg "github.com/KaramelBytes/heartstat-cli/internal/config"
	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/KaramelBytes/heartstat-cli/internal/utils"
	"github.com/spf13/cobra"
)

// lookupFlags are shared by every command that needs a dataset.
type lookupFlags struct {
	path    string
	root    string
	pattern string
	upload  string
}

func (lf *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.path, "path", "", "primary dataset path (overrides primary_path)")
	cmd.Flags().StringVar(&lf.root, "search-root", "", "directory searched when the primary path is absent (overrides search_root)")
	cmd.Flags().StringVar(&lf.pattern, "pattern", "", "fallback glob, '**/' matches any depth (overrides search_pattern)")
	cmd.Flags().StringVar(&lf.upload, "upload", "", "read the dataset from this file, or '-' for stdin; wins over path and search")
}

// request builds a dataset request from config with flag overrides applied.
func (lf *lookupFlags) request(cmd *cobra.Command, c *cfgpkg.Global) (dataset.Request, error) {
	primary, root, pattern := c.PrimaryPath, c.SearchRoot, c.SearchPattern
	if lf.path != "" {
		primary = lf.path
	}
	if lf.root != "" {
		root = lf.root
	}
	if lf.pattern != "" {
		pattern = lf.pattern
	}
	var err error
	if primary, err = utils.ExpandHome(primary); err != nil {
		return dataset.Request{}, err
	}
	if root, err = utils.ExpandHome(root); err != nil {
		return dataset.Request{}, err
	}
	req := dataset.NewRequest(primary, root, pattern)
	switch lf.upload {
	case "":
		return req, nil
	case "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return dataset.Request{}, fmt.Errorf("read upload from stdin: %w", err)
		}
		return req.WithUpload("stdin", b), nil
	default:
		p, err := utils.ExpandHome(lf.upload)
		if err != nil {
			return dataset.Request{}, err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return dataset.Request{}, fmt.Errorf("read upload: %w", err)
		}
		return req.WithUpload(filepath.Base(p), b), nil
	}
}

func newLocator(c *cfgpkg.Global) *dataset.Locator {
	opts := []dataset.Option{dataset.WithLogger(logger)}
	if len(c.RequiredColumns) > 0 {
		opts = append(opts, dataset.WithRequiredColumns(c.RequiredColumns...))
	}
	return dataset.NewLocator(opts...)
}

// failure turns a rejected lookup into the message shown to the user.
func failure(res dataset.Result) error {
	switch res.Outcome {
	case dataset.OutcomeNotFound:
		return fmt.Errorf("%s; pass --upload to supply it", res.Message)
	case dataset.OutcomeEmptyFile:
		return errors.New("the file is empty")
	case dataset.OutcomeParseError:
		return fmt.Errorf("error loading data: %s", res.Message)
	default:
		return res.Err()
	}
}
