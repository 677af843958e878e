package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	flagGetSet    string
	flagGetKey    []string
	flagGetExpand []string
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Gets one resource of a resource set by key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseKey(flagGetKey)
		if err != nil {
			return err
		}

		s, err := newSession(context.Background())
		if err != nil {
			return err
		}
		defer s.shutdown(context.Background())

		res, err := s.runtime.GetResourceByKey(s.ctx, flagGetSet, key, flagGetExpand)
		if err != nil {
			return err
		}

		if res == nil {
			return printJSON(nil)
		}
		return printJSON(res.ToMap())
	},
}

func init() {
	getCmd.Flags().StringVar(&flagGetSet, "set", "", "resource set to query")
	getCmd.Flags().StringSliceVar(&flagGetKey, "key", nil, "key fields as field=value")
	getCmd.Flags().StringSliceVar(&flagGetExpand, "expand", nil, "relation paths to load")
	_ = getCmd.MarkFlagRequired("set")
	_ = getCmd.MarkFlagRequired("key")
}
