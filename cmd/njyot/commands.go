package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"njyot/internal/database"
	"njyot/internal/models"
	"njyot/internal/shop"
)

func initCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create the data store and seed any missing default data",
		Action: func(c *cli.Context) error {
			if err := a.db.Seed(c.Context); err != nil {
				return err
			}
			if err := a.db.Flush(c.Context); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "store ready on %s: %d categories, %d products, %d settings\n",
				a.db.Medium().Name(),
				a.db.Count(database.Select(database.Categories)),
				a.db.Count(database.Select(database.Products)),
				len(a.db.AllSettings()),
			)
			return nil
		},
	}
}

func statsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show the dashboard summary",
		Action: func(c *cli.Context) error {
			st := a.shop.Stats()
			w := c.App.Writer
			fmt.Fprintf(w, "orders:   %d (%d pending)\n", st.TotalOrders, st.PendingOrders)
			fmt.Fprintf(w, "products: %d\n", st.TotalProducts)
			fmt.Fprintf(w, "revenue:  %d\n", st.TotalRevenue)
			if len(st.RecentOrders) > 0 {
				fmt.Fprintln(w, "\nrecent orders:")
				printOrders(c, st.RecentOrders)
			}
			return nil
		},
	}
}

func productsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list products, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "category slug"},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "match name or description"},
			&cli.BoolFlag{Name: "featured", Usage: "featured products only"},
			&cli.IntFlag{Name: "limit", Usage: "maximum number of products"},
		},
		Action: func(c *cli.Context) error {
			products := a.shop.ListProducts(shop.ProductFilter{
				Category:     c.String("category"),
				Search:       c.String("search"),
				FeaturedOnly: c.Bool("featured"),
				Limit:        c.Int("limit"),
			})

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tPRICE\tSTOCK\tFEATURED")
			for _, p := range products {
				price := strconv.FormatInt(p.Price, 10)
				if p.OnSale() {
					price = fmt.Sprintf("%d (was %d)", p.EffectivePrice(), p.Price)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n",
					p.ID, p.Slug, p.CategoryLabel(), price, p.Stock, p.Featured)
			}
			return tw.Flush()
		},
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "create a product",
				Flags: productFlags(true),
				Action: func(c *cli.Context) error {
					in, err := productInput(c, a.shop, shop.ProductInput{})
					if err != nil {
						return err
					}
					p, err := a.shop.CreateProduct(c.Context, in)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "created product %d (%s)\n", p.ID, p.Slug)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "change a product; unset flags keep their value",
				ArgsUsage: "<product-id>",
				Flags:     productFlags(false),
				Action: func(c *cli.Context) error {
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					current, err := a.shop.ProductByID(id)
					if err != nil {
						return err
					}
					in, err := productInput(c, a.shop, shop.ProductInput{
						Name:        current.Name,
						Description: current.Description,
						Price:       current.Price,
						SalePrice:   current.SalePrice,
						CategoryID:  current.CategoryID,
						Stock:       current.Stock,
						Featured:    current.Featured,
					})
					if err != nil {
						return err
					}
					p, err := a.shop.UpdateProduct(c.Context, id, in)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "updated product %d (%s)\n", p.ID, p.Slug)
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "delete a product; past order lines are kept",
				ArgsUsage: "<product-id>",
				Action: func(c *cli.Context) error {
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					if err := a.shop.DeleteProduct(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "deleted product %d\n", id)
					return nil
				},
			},
		},
	}
}

// productFlags are the editable product fields. Name and price are only
// required when creating.
func productFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: create},
		&cli.StringFlag{Name: "description"},
		&cli.Int64Flag{Name: "price", Required: create},
		&cli.Int64Flag{Name: "sale-price", Usage: "0 removes the sale price"},
		&cli.StringFlag{Name: "category", Usage: "category slug, empty for none"},
		&cli.StringFlag{Name: "image", Usage: "image path"},
		&cli.Int64Flag{Name: "stock"},
		&cli.BoolFlag{Name: "featured"},
	}
}

// productInput applies the flags that were set on top of base.
func productInput(c *cli.Context, svc *shop.Service, base shop.ProductInput) (shop.ProductInput, error) {
	in := base
	if c.IsSet("name") {
		in.Name = c.String("name")
	}
	if c.IsSet("description") {
		in.Description = c.String("description")
	}
	if c.IsSet("price") {
		in.Price = c.Int64("price")
	}
	if c.IsSet("sale-price") {
		in.SalePrice = nil
		if v := c.Int64("sale-price"); v != 0 {
			in.SalePrice = &v
		}
	}
	if c.IsSet("category") {
		in.CategoryID = nil
		if s := c.String("category"); s != "" {
			id, ok := categoryID(svc, s)
			if !ok {
				return in, fmt.Errorf("category %q: %w", s, shop.ErrNotFound)
			}
			in.CategoryID = &id
		}
	}
	if c.IsSet("image") {
		v := c.String("image")
		in.Image = &v
	}
	if c.IsSet("stock") {
		in.Stock = c.Int64("stock")
	}
	if c.IsSet("featured") {
		in.Featured = c.Bool("featured")
	}
	return in, nil
}

func categoryID(svc *shop.Service, categorySlug string) (int64, bool) {
	for _, cat := range svc.Categories() {
		if cat.Slug == categorySlug {
			return cat.ID, true
		}
	}
	return 0, false
}

func ordersCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "list and update orders",
		Action: func(c *cli.Context) error {
			printOrders(c, a.shop.ListOrders())
			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:  "place",
				Usage: "place an order on behalf of a customer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "address", Required: true},
					&cli.StringFlag{Name: "payment", Value: "cod"},
					&cli.StringSliceFlag{Name: "item", Required: true, Usage: "<product-id>:<quantity>, repeatable"},
				},
				Action: func(c *cli.Context) error {
					lines, err := parseCartLines(c.StringSlice("item"))
					if err != nil {
						return err
					}
					d, err := a.shop.PlaceOrder(c.Context, shop.Checkout{
						CustomerName:    c.String("name"),
						CustomerEmail:   c.String("email"),
						CustomerPhone:   c.String("phone"),
						ShippingAddress: c.String("address"),
						PaymentMethod:   c.String("payment"),
						Lines:           lines,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "placed order %s (#%d), total %d\n", d.Order.OrderNumber, d.Order.ID, d.Order.Total)
					return nil
				},
			},
			{
				Name:      "status",

				Usage:     "move an order to a new status",
				ArgsUsage: "<order-id> <pending|processing|shipped|delivered|cancelled>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: njyot orders status <order-id> <status>", 2)
					}
					id, err := parseID(c.Args().Get(0))
					if err != nil {
						return err
					}
					status := models.OrderStatus(c.Args().Get(1))
					if err := a.shop.UpdateOrderStatus(c.Context, id, status); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "order %d is now %s\n", id, status)
					return nil
				},
			},
			{
				Name:      "paid",
				Usage:     "record payment for an order",
				ArgsUsage: "<order-id>",
				Action: func(c *cli.Context) error {
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					if err := a.shop.MarkPaid(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "order %d marked as paid\n", id)
					return nil
				},
			},
		},
	}
}

func trackCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "show an order and its status history",
		ArgsUsage: "<order-number>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: njyot track <order-number>", 2)
			}
			d, err := a.shop.OrderByNumber(c.Args().First())
			if err != nil {
				return err
			}

			w := c.App.Writer
			o := d.Order
			fmt.Fprintf(w, "order %s (#%d) for %s <%s>\n", o.OrderNumber, o.ID, o.CustomerName, o.CustomerEmail)
			fmt.Fprintf(w, "status %s, payment %s (%s), total %d\n", o.Status, o.PaymentStatus, o.PaymentMethod, o.Total)
			fmt.Fprintf(w, "ship to: %s\n\n", o.ShippingAddress)

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tQTY\tPRICE\tSUBTOTAL")
			for _, it := range d.Items {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", it.ProductName, it.Quantity, it.Price, it.Subtotal())
			}
			fmt.Fprintln(tw, "\t\t\t")
			fmt.Fprintln(tw, "WHEN\tSTATUS\tDESCRIPTION\t")
			for _, t := range d.Tracking {
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Status, t.Description)
			}
			return tw.Flush()
		},
	}
}

func settingsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "read and change site settings",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every setting",
				Action: func(c *cli.Context) error {
					settings := a.shop.Settings()
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					for _, key := range sortedKeys(settings) {
						fmt.Fprintf(tw, "%s\t%s\n", key, settings[key])
					}
					return tw.Flush()
				},
			},
			{
				Name:      "get",
				Usage:     "print one setting",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					v, err := a.shop.Setting(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, v)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "create or change a setting",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: njyot settings set <key> <value>", 2)
					}
					return a.shop.UpdateSetting(c.Context, c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}

func adminCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "manage back-office credentials",
		Subcommands: []*cli.Command{
			{
				Name:      "passwd",
				Usage:     "set an admin password",
				ArgsUsage: "<username>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"NJYOT_NEW_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					username := c.Args().First()
					if username == "" {
						username = "admin"
					}
					return a.shop.SetAdminPassword(c.Context, username, c.String("password"))
				},
			},
		},
	}
}

func exportCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "print the full store as a snapshot document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			data, err := a.db.Export()
			if err != nil {
				return err
			}
			if path := c.String("output"); path != "" {
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				return nil
			}
			_, err = fmt.Fprintln(c.App.Writer, string(data))
			return err
		},
	}
}

func printOrders(c *cli.Context, orders []models.Order) {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tCUSTOMER\tTOTAL\tSTATUS\tPAYMENT\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.CustomerName, o.Total, o.Status, o.PaymentStatus,
			o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid id %q", s), 2)
	}
	return id, nil
}

// parseCartLines reads "<product-id>:<quantity>" pairs. A bare id means a
// quantity of one.
func parseCartLines(items []string) ([]shop.CartLine, error) {
	lines := make([]shop.CartLine, 0, len(items))
	for _, item := range items {
		idPart, qtyPart, found := strings.Cut(item, ":")
		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("item %q: invalid product id: %w", item, shop.ErrInvalidInput)
		}
		qty := int64(1)
		if found {
			if qty, err = strconv.ParseInt(strings.TrimSpace(qtyPart), 10, 64); err != nil {
				return nil, fmt.Errorf("item %q: invalid quantity: %w", item, shop.ErrInvalidInput)
			}
		}
		lines = append(lines, shop.CartLine{ProductID: id, Quantity: qty})
	}
	return lines, nil
}

func sortedKeys(m models.SiteSettings) []string {
	return slices.Sorted(maps.Keys(m))
}
