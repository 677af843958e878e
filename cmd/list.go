package cmd

import (
	"context"

	"github.com/spf13/cobra"
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/actions"
)

var (
	flagSet       string
	flagTop       int
	flagSkip      int
	flagOrderBy   []string
	flagFilter    []string
	flagExpand    []string
	flagSkipToken string
	flagCount     bool
	flagCountOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the resources of a resource set",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := listInput(cmd)
		if err != nil {
			return err
		}

		s, err := newSession(context.Background())
		if err != nil {
			return err
		}
		defer s.shutdown(context.Background())

		res, err := s.runtime.ListResourceSet(s.ctx, input)
		if err != nil {
			return err
		}

		out := map[string]any{
			"hasMore": res.HasMore,
		}
		if input.Kind != actions.QueryKindCount {
			rows := make([]map[string]any, 0, len(res.Rows))
			for _, r := range res.Rows {
				rows = append(rows, r.ToMap())
			}
			out["rows"] = rows
		}
		if res.Count != nil {
			out["count"] = *res.Count
		}
		if len(res.NextSkipToken) > 0 {
			token, err := q.EncodeSkipToken(res.NextSkipToken)
			if err != nil {
				return err
			}
			out["skipToken"] = token
			out["orderBy"] = formatOrderBy(res.OrderBy)
		}

		return printJSON(out)
	},
}

func init() {
	listCmd.Flags().StringVar(&flagSet, "set", "", "resource set to query")
	listCmd.Flags().IntVar(&flagTop, "top", -1, "maximum number of rows to return")
	listCmd.Flags().IntVar(&flagSkip, "skip", 0, "number of matching rows to skip")
	listCmd.Flags().StringSliceVar(&flagOrderBy, "orderby", nil, "ordering segments as field or field:desc")
	listCmd.Flags().StringArrayVar(&flagFilter, "filter", nil, "filter as 'field op value', repeatable")
	listCmd.Flags().StringSliceVar(&flagExpand, "expand", nil, "relation paths to load")
	listCmd.Flags().StringVar(&flagSkipToken, "skiptoken", "", "skip token from a previous page")
	listCmd.Flags().BoolVar(&flagCount, "count", false, "include the total count of matching rows")
	listCmd.Flags().BoolVar(&flagCountOnly, "count-only", false, "return only the total count of matching rows")
	_ = listCmd.MarkFlagRequired("set")
}

func listInput(cmd *cobra.Command) (actions.ListInput, error) {
	input := actions.ListInput{
		Kind:        actions.QueryKindEntities,
		ResourceSet: flagSet,
		Expand:      flagExpand,
	}

	switch {
	case flagCountOnly:
		input.Kind = actions.QueryKindCount
	case flagCount:
		input.Kind = actions.QueryKindEntitiesWithCount
	}

	if flagTop >= 0 {
		top := flagTop
		input.Top = &top
	}
	if cmd.Flags().Changed("skip") {
		skip := flagSkip
		input.Skip = &skip
	}

	orderBy, err := parseOrderBy(flagOrderBy)
	if err != nil {
		return input, err
	}
	input.OrderBy = orderBy

	input.Filter, err = parseFilters(flagFilter)
	if err != nil {
		return input, err
	}

	if flagSkipToken != "" {
		input.SkipToken, err = q.ParseSkipToken(flagSkipToken)
		if err != nil {
			return input, err
		}
		// A token carries the ordering it was issued for.
		if len(input.OrderBy) == 0 {
			input.OrderBy = tokenOrderBy(input.SkipToken)
		}
	}

	return input, nil
}
