package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/rpnd/internal/client"
)

// stackOptions are shared by every "stack" subcommand.
type stackOptions struct {
	server string
	output string
}

// newStackCommand creates the "stack" group that talks to a running service.
func newStackCommand(opts *Options) *cobra.Command {
	sOpts := &stackOptions{}

	cmd := newParentCommand("stack", "Manage stacks on a running rpnd service",
		newStackCreateCommand(opts, sOpts),
		newStackListCommand(opts, sOpts),
		newStackGetCommand(opts, sOpts),
		newStackPushCommand(opts, sOpts),
		newStackPopCommand(opts, sOpts),
		newStackClearCommand(opts, sOpts),
		newStackDeleteCommand(opts, sOpts),
		newStackOpCommand(opts, sOpts),
	)
	cmd.PersistentFlags().StringVar(&sOpts.server, "server", "", "Base URL of the rpnd service (default from config)")
	cmd.PersistentFlags().StringVarP(&sOpts.output, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func (s *stackOptions) client(opts *Options) (*client.Client, error) {
	serverURL := opts.Config.Client.ServerURL
	if strings.TrimSpace(s.server) != "" {
		serverURL = s.server
	}
	return client.New(serverURL, opts.Config.Client.Timeout)
}

type stackView struct {
	StackID string    `json:"stack_id" yaml:"stack_id"`
	Stack   []float64 `json:"stack" yaml:"stack"`
}

func (s *stackOptions) printStack(cmd *cobra.Command, id string, values []float64) error {
	return printValue(cmd.OutOrStdout(), s.output, stackView{StackID: id, Stack: values}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, formatStack(values))
		return err
	})
}

func newStackCreateCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new empty stack and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			id, err := c.Create(cmd.Context())
			if err != nil {
				return err
			}
			commandLogger(cmd).Debug("stack created", "stack_id", id)
			return printValue(cmd.OutOrStdout(), sOpts.output, map[string]string{"stack_id": id}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, id)
				return err
			})
		},
	}
}

func newStackListCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stack ids",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			ids, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), sOpts.output, map[string][]string{"stacks": ids}, func(w io.Writer) error {
				for _, id := range ids {
					if _, err := fmt.Fprintln(w, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newStackGetCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get STACK_ID",
		Short: "Print a stack bottom to top",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			values, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return sOpts.printStack(cmd, args[0], values)
		},
	}
}

func newStackPushCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push STACK_ID VALUE...",
		Short: "Push one or more values onto a stack",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, 0, len(args)-1)
			for _, raw := range args[1:] {
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("invalid value %q: %w", raw, err)
				}
				values = append(values, v)
			}

			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			var stack []float64
			for _, v := range values {
				stack, err = c.Push(cmd.Context(), args[0], v)
				if err != nil {
					return err
				}
			}
			return sOpts.printStack(cmd, args[0], stack)
		},
	}
}

func newStackPopCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pop STACK_ID",
		Short: "Remove and print the top value of a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			v, rest, err := c.Pop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := map[string]any{"value": v, "stack": rest}
			return printValue(cmd.OutOrStdout(), sOpts.output, out, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strconv.FormatFloat(v, 'g', -1, 64))
				return err
			})
		},
	}
}

func newStackClearCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear STACK_ID",
		Short: "Remove every value from a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			if err := c.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			return sOpts.printStack(cmd, args[0], []float64{})
		},
	}
}

func newStackDeleteCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete STACK_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a stack",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			commandLogger(cmd).Info("stack deleted", "stack_id", args[0])
			return nil
		},
	}
}

func newStackOpCommand(opts *Options, sOpts *stackOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "op STACK_ID OPERATOR",
		Short: "Apply +, -, * or / (or add, sub, mul, div) to the top two values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := sOpts.client(opts)
			if err != nil {
				return err
			}
			values, err := c.Operate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return sOpts.printStack(cmd, args[0], values)
		},
	}
}
