package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	cl "tycoon/internal/cli"
	"tycoon/internal/syncq"

	"github.com/spf13/cobra"
)

func newBusinessCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	business := &cobra.Command{
		Use:     "business",
		Short:   "Business management commands",
		Aliases: []string{"biz"},
	}
	business.AddCommand(
		newBusinessListCmd(apiBase),
		newBusinessCreateCmd(apiBase, queue),
		newBusinessShowCmd(apiBase),
		newBusinessRenameCmd(apiBase, queue),
		newBusinessDeleteCmd(apiBase, queue),
		newBusinessLevelUpCmd(apiBase, queue),
		newBusinessBuyCarCmd(apiBase, queue),
		newBusinessBuySpaceCmd(apiBase, queue),
		newBusinessMaterialsCmd(apiBase),
		newBusinessBuyMaterialCmd(apiBase, queue),
		newBusinessBuildCmd(apiBase, queue),
		newBusinessSellCmd(apiBase, queue),
	)
	return business
}

func newBusinessListCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List owned businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.ListBusinesses(ctx)
			}, renderBusinessList)
		},
	}
}

func newBusinessCreateCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var businessType, subtype int
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Buy a new business (see `tyc catalog` for types)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			name := ""
			if len(args) > 0 {
				name = strings.TrimSpace(args[0])
			} else {
				name, err = promptRequired("Business name")
				if err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("type") {
				businessType, err = promptInt("Type index", 0)
				if err != nil {
					return err
				}
			}
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   "/v1/businesses",
				body:   map[string]any{"name": name, "type": businessType, "subtype": subtype},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.CreateBusiness(ctx, name, businessType, subtype, idem)
				},
				render: renderBusiness,
			})
		},
	}
	cmd.Flags().IntVarP(&businessType, "type", "t", 0, "business type index")
	cmd.Flags().IntVarP(&subtype, "subtype", "s", 0, "subtype index for shops and factories")
	return cmd
}

func newBusinessShowCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Business(ctx, args[0])
			}, renderBusiness)
		},
	}
}

func newBusinessRenameCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a business",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "name"),
				body:   map[string]any{"name": name},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.RenameBusiness(ctx, id, name, idem)
				},
				render: func(out map[string]any) error {
					return renderSimpleOK(out, fmt.Sprintf("Renamed to %s.", name))
				},
			})
		},
	}
}

func newBusinessDeleteCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a business without refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes {
				ok, err := promptConfirm("Delete this business? Nothing is refunded")
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled.")
					return nil
				}
			}
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodDelete,
				path:   cl.BusinessPath(id),
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.DeleteBusiness(ctx, id, idem)
				},
				render: func(out map[string]any) error {
					return renderSimpleOK(out, "Business deleted.")
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newBusinessLevelUpCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	return &cobra.Command{
		Use:     "levelup <id>",
		Short:   "Level up a shop or factory",
		Aliases: []string{"level-up"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "level-up"),
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.LevelUp(ctx, id, idem)
				},
				render: renderBusiness,
			})
		},
	}
}

func newBusinessBuyCarCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var car int
	cmd := &cobra.Command{
		Use:   "buy-car <id>",
		Short: "Buy a car for a taxi or transport company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "cars"),
				body:   map[string]any{"car": car},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.BuyCar(ctx, id, car, idem)
				},
				render: renderBusiness,
			})
		},
	}
	cmd.Flags().IntVarP(&car, "car", "c", 0, "car model index from the catalog")
	return cmd
}

func newBusinessBuySpaceCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var tier int
	cmd := &cobra.Command{
		Use:   "buy-space <id>",
		Short: "Buy more garage space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "space"),
				body:   map[string]any{"tier": tier},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.BuySpace(ctx, id, tier, idem)
				},
				render: renderBusiness,
			})
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 0, "space upgrade index from the catalog")
	return cmd
}

func newBusinessMaterialsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "materials <id>",
		Short: "Show a construction company's material stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Materials(ctx, args[0])
			}, renderMaterials)
		},
	}
}

func newBusinessBuyMaterialCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	return &cobra.Command{
		Use:   "buy-material <id> <material> <quantity>",
		Short: "Buy construction materials (Metal, Workers, Wood, Concrete)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, material := args[0], args[1]
			var quantity int
			if _, err := fmt.Sscanf(args[2], "%d", &quantity); err != nil || quantity <= 0 {
				return fmt.Errorf("quantity must be a positive whole number")
			}
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "materials"),
				body:   map[string]any{"material": material, "quantity": quantity},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.BuyMaterial(ctx, id, material, quantity, idem)
				},
				render: func(out map[string]any) error {
					return renderSimpleOK(out, fmt.Sprintf("Bought %d %s.", quantity, material))
				},
			})
		},
	}
}

func newBusinessBuildCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var plan int
	var buyMissing bool
	cmd := &cobra.Command{
		Use:   "build <id>",
		Short: "Start a construction project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "constructions"),
				body:   map[string]any{"plan": plan, "buy_missing": buyMissing},
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.StartConstruction(ctx, id, plan, buyMissing, idem)
				},
				render: renderBusiness,
			})
		},
	}
	cmd.Flags().IntVarP(&plan, "plan", "p", 0, "construction plan index from the catalog")
	cmd.Flags().BoolVar(&buyMissing, "buy-missing", false, "buy any missing materials first")
	return cmd
}

func newBusinessSellCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <id> <construction-id>",
		Short: "Sell a finished construction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, constructionID := args[0], args[1]
			return runMutation(cmd, apiBase, queue, mutation{
				method: http.MethodPost,
				path:   cl.BusinessPath(id, "constructions", constructionID, "sell"),
				call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
					return c.SellConstruction(ctx, id, constructionID, idem)
				},
				render: func(out map[string]any) error {
					return renderSimpleOK(out, "Construction sold.")
				},
			})
		},
	}
}
