package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"tycoon/internal/catalog"
	"tycoon/internal/game"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type businessesPayload struct {
	Businesses []game.BusinessView `json:"businesses"`
}

type businessPayload struct {
	Business game.BusinessView `json:"business"`
	Balance  float64           `json:"balance"`
}

type materialsPayload struct {
	Materials              map[string]int `json:"materials"`
	FinishedProjectsIncome float64        `json:"finished_projects_income"`
}

type incomePayload struct {
	IncomePerHour float64 `json:"income_per_hour"`
	IncomePerTick float64 `json:"income_per_tick"`
}

type missingPayload struct {
	Missing   []game.MaterialShortfall `json:"missing"`
	TotalCost float64                  `json:"total_cost"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptInt(label string, min int) (int, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func promptConfirm(label string) (bool, error) {
	fmt.Printf("%s (y/N): ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return false, err
	}
	text = strings.ToLower(strings.TrimSpace(text))
	return text == "y" || text == "yes", nil
}

func renderDashboard(raw map[string]any) error {
	d, err := decodeInto[game.Dashboard](raw)
	if err != nil {
		return err
	}

	accent.Println("\n== DASHBOARD ==")
	fmt.Printf("Balance:          %s\n", formatMoney(d.Balance))
	fmt.Printf("XP / Level:       %d / %d\n", d.XP, d.Level)
	fmt.Printf("Income per hour:  %s\n", colorizeMoney(d.IncomePerHour))
	fmt.Printf("Income per tick:  %s\n", colorizeMoney(d.IncomePerTick))
	if d.BestBusiness != nil {
		fmt.Printf("Best business:    %s (%s/h)\n", d.BestBusiness.Name, formatMoney(d.BestBusiness.IncomePerHour))
	}
	switch {
	case !d.SchedulerRunning:
		printWarn("Scheduler is idle.")
	case d.SecondsToNextTick > 0:
		fmt.Printf("Next tick in:     %s\n", (time.Duration(d.SecondsToNextTick) * time.Second).String())
	}

	fmt.Println()
	renderBusinessTable(d.Businesses)
	fmt.Println()
	return nil
}

func renderBusinessList(raw map[string]any) error {
	payload, err := decodeInto[businessesPayload](raw)
	if err != nil {
		return err
	}
	renderBusinessTable(payload.Businesses)
	return nil
}

func renderBusinessTable(businesses []game.BusinessView) {
	accent.Println("Businesses")
	if len(businesses) == 0 {
		printInfo("No businesses yet.")
		return
	}
	fmt.Printf("%-36s %-20s %-13s %-14s %12s\n", "ID", "NAME", "KIND", "DETAIL", "INCOME/H")
	for _, b := range businesses {
		fmt.Printf("%-36s %-20s %-13s %-14s %12s\n",
			b.ID,
			truncate(b.Name, 20),
			b.Kind,
			truncate(businessDetail(b), 14),
			formatMoney(b.IncomePerHour),
		)
	}
}

func businessDetail(b game.BusinessView) string {
	switch b.Kind {
	case game.KindShop.String(), game.KindFactory.String():
		return fmt.Sprintf("lvl %d/%d", b.Level, b.MaxLevel)
	case game.KindTaxi.String(), game.KindTransport.String():
		return fmt.Sprintf("cars %d/%d", len(b.Cars), b.MaxSpace)
	case game.KindConstruction.String():
		return fmt.Sprintf("sites %d", len(b.Constructions))
	default:
		return "-"
	}
}

func renderBusiness(raw map[string]any) error {
	payload, err := decodeInto[businessPayload](raw)
	if err != nil {
		return err
	}
	b := payload.Business
	accent.Printf("\n== %s ==\n", b.Name)
	fmt.Printf("ID:        %s\n", b.ID)
	fmt.Printf("Type:      %s (%s)\n", b.TypeName, b.Kind)
	fmt.Printf("Income/h:  %s\n", formatMoney(b.IncomePerHour))

	switch b.Kind {
	case game.KindShop.String(), game.KindFactory.String():
		fmt.Printf("Subtype:   %s\n", b.SubtypeName)
		fmt.Printf("Level:     %d / %d\n", b.Level, b.MaxLevel)
		if b.Level < b.MaxLevel {
			fmt.Printf("Next lvl:  %s for %s/h\n", formatMoney(b.LevelUpCost), formatMoney(b.NextIncomePerHour))
		} else {
			printInfo("Max level reached.")
		}
	case game.KindTaxi.String(), game.KindTransport.String():
		fmt.Printf("Garage:    %d / %d\n", len(b.Cars), b.MaxSpace)
		if len(b.Cars) > 0 {
			fmt.Printf("%-24s %-10s %14s %10s\n", "CAR", "CATEGORY", "KM LEFT", "INCOME/H")
			for _, c := range b.Cars {
				fmt.Printf("%-24s %-10s %14s %10s\n", truncate(c.Name, 24), truncate(c.Category, 10), colorizeKilometers(c.Kilometers), formatMoney(c.IncomePerHour))
			}
		}
	case game.KindConstruction.String():
		renderStock(b.Materials)
		if len(b.Constructions) > 0 {
			fmt.Printf("%-36s %-18s %5s %12s %10s\n", "CONSTRUCTION", "NAME", "LVL", "PRICE", "LEFT")
			for _, c := range b.Constructions {
				left := success.Sprint("ready")
				if !c.Finished {
					left = (time.Duration(c.TimeLeftMS) * time.Millisecond).String()
				}
				fmt.Printf("%-36s %-18s %5d %12s %10s\n", c.ID, truncate(c.Name, 18), c.Level, formatMoney(c.Price), left)
			}
		}
		if b.FinishedProjectsIncome > 0 {
			fmt.Printf("Ready to sell: %s\n", colorizeMoney(b.FinishedProjectsIncome))
		}
	}
	if payload.Balance != 0 {
		fmt.Printf("Balance:   %s\n", formatMoney(payload.Balance))
	}
	fmt.Println()
	return nil
}

func renderMaterials(raw map[string]any) error {
	payload, err := decodeInto[materialsPayload](raw)
	if err != nil {
		return err
	}
	renderStock(payload.Materials)
	fmt.Printf("Ready to sell: %s\n", formatMoney(payload.FinishedProjectsIncome))
	return nil
}

func renderStock(stock map[string]int) {
	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		n := stock[name]
		text := fmt.Sprintf("%s %d", name, n)
		if n < 0 {
			text = danger.Sprint(text)
		}
		parts = append(parts, text)
	}
	fmt.Printf("Materials: %s\n", strings.Join(parts, ", "))
}

func renderCatalog(raw map[string]any) error {
	cat, err := decodeInto[catalog.Catalog](raw)
	if err != nil {
		return err
	}
	for i, t := range cat.Types {
		accent.Printf("\n[%d] %s (%s)\n", i, t.Name, game.KindOf(i))
		if t.Description != "" {
			printInfo(t.Description)
		}
		for j, s := range t.Subtypes {
			fmt.Printf("  subtype %d  %-16s cost %-10s income %s/h  max lvl %d\n", j, s.Name, formatMoney(s.Cost), formatMoney(s.BaseIncome), s.MaxLevel)
		}
		if len(t.Subtypes) == 0 {
			fmt.Printf("  cost %s\n", formatMoney(t.Cost))
		}
		for j, c := range t.Cars {
			fmt.Printf("  car %d      %-18s price %-10s income %s/h  %s km\n", j, c.Name, formatMoney(c.Price), formatMoney(c.IncomePerHour), comma(int64(c.Kilometers)))
		}
		for j, sp := range t.SpacePrices {
			fmt.Printf("  space %d    +%d slots for %s\n", j, sp.AddedSpace, formatMoney(sp.Price))
		}
		for _, m := range t.Materials {
			fmt.Printf("  material   %-10s %s each\n", m.Name, formatMoney(m.Price))
		}
		for j, p := range t.Constructions {
			fmt.Printf("  plan %d     %-18s level %d  sells %-10s build %s  unlock: %d sold at level %d\n",
				j, p.Name, p.Level, formatMoney(p.Price), (time.Duration(p.Time) * time.Millisecond).String(), p.Previous, p.Level-1)
		}
	}
	fmt.Println()
	return nil
}

func renderIncome(raw map[string]any) error {
	payload, err := decodeInto[incomePayload](raw)
	if err != nil {
		return err
	}
	fmt.Printf("Income per hour: %s\n", colorizeMoney(payload.IncomePerHour))
	fmt.Printf("Income per tick: %s\n", colorizeMoney(payload.IncomePerTick))
	return nil
}

func renderTick(raw map[string]any) error {
	report, err := decodeInto[game.TickReport](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Tick settled: %s earned, balance %s.", formatMoney(report.Income), formatMoney(report.Balance)))
	return nil
}

func renderMissing(body map[string]any) {
	payload, err := decodeInto[missingPayload](body)
	if err != nil || len(payload.Missing) == 0 {
		return
	}
	warn.Println("Missing materials:")
	for _, m := range payload.Missing {
		fmt.Printf("  %-10s %6d  %s\n", m.Name, m.Missing, formatMoney(m.Cost))
	}
	fmt.Printf("  total cost %s (rerun with --buy-missing to buy them)\n", formatMoney(payload.TotalCost))
}

func renderSimpleOK(raw map[string]any, successMessage string) error {
	if successMessage != "" {
		printSuccess(successMessage)
	} else {
		printInfo("Done.")
	}
	if bal, ok := raw["balance"].(float64); ok {
		fmt.Printf("Balance: %s\n", formatMoney(bal))
	}
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func colorizeMoney(v float64) string {
	text := formatMoney(v)
	switch {
	case v > 0:
		return success.Sprint("+" + text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeKilometers(km float64) string {
	text := comma(int64(km))
	if km <= 0 {
		return danger.Sprint(text)
	}
	return text
}

// formatMoney renders an amount with two decimals and thousands separators.
func formatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, comma(whole.IntPart()), frac)
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
