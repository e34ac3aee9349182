package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"partsource/internal/bootstrap"
	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
	"partsource/internal/errs"
	"partsource/internal/usecase/sourcing"
)

var sourceRequirementsFile string

// requirementsFile is the source command's input: the repair order and its
// open part requirements.
type requirementsFile struct {
	RepairOrderID string `json:"repairOrderId"`
	Requirements  []struct {
		RequirementID   string  `json:"requirementId"`
		PartDescription string  `json:"partDescription"`
		OEMPartNumber   string  `json:"oemPartNumber,omitempty"`
		Quantity        int     `json:"quantity"`
		TargetPrice     *string `json:"targetPrice,omitempty"`
		Category        string  `json:"category"`
		BrandPreference string  `json:"brandPreference,omitempty"`
	} `json:"requirements"`
}

// sourceCmd represents the source command
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Run one sourcing request end-to-end from files",
	Long:  "Creates a sourcing request from a requirements file, collects quotes from the canned quote book and resolves it into purchase orders. Useful for offline runs and demos.",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *sourcing.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		input, err := readRequirementsFile(sourceRequirementsFile)
		if err != nil {
			return err
		}

		request, err := svc.CreateRequest(ctx, input)
		if err != nil {
			return errs.Wrap(err, "create sourcing request")
		}

		outcome, err := svc.Resolve(ctx, request.RequestID)
		if err != nil {
			return errs.Wrap(err, "resolve sourcing request")
		}

		rendered, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return errs.Wrap(err, "render outcome")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(rendered)); err != nil {
			return errs.Wrap(err, "write outcome")
		}
		return nil
	}),
}

func readRequirementsFile(path string) (sourcing.CreateRequestInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sourcing.CreateRequestInput{}, errs.Wrapf(err, "read requirements file %q", path)
	}

	var file requirementsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return sourcing.CreateRequestInput{}, errs.Wrapf(err, "parse requirements file %q", path)
	}

	input := sourcing.CreateRequestInput{RepairOrderID: file.RepairOrderID}
	for _, r := range file.Requirements {
		req := part.Requirement{
			RequirementID:   r.RequirementID,
			RepairOrderID:   file.RepairOrderID,
			PartDescription: r.PartDescription,
			OEMPartNumber:   r.OEMPartNumber,
			Quantity:        r.Quantity,
			Category:        part.Category(r.Category),
			CurrentStatus:   part.StatusNeeded,
		}
		if r.TargetPrice != nil {
			target, err := decimal.NewFromString(*r.TargetPrice)
			if err != nil {
				return sourcing.CreateRequestInput{}, errs.Wrapf(err, "requirement %q target price", r.RequirementID)
			}
			req.TargetPrice = &target
		}
		if r.BrandPreference != "" {
			brand, err := quote.ParseBrandType(r.BrandPreference)
			if err != nil {
				return sourcing.CreateRequestInput{}, errs.Wrapf(err, "requirement %q brand preference", r.RequirementID)
			}
			req.BrandPreference = brand
		}
		input.Requirements = append(input.Requirements, req)
	}
	return input, nil
}

func init() {
	rootCmd.AddCommand(sourceCmd)

	sourceCmd.Flags().StringVar(&sourceRequirementsFile, "requirements", "", "Path to the requirements JSON file")
	sourceCmd.Flags().StringVar(&quoteBookFile, "quotes", "", "Path to the canned quote book JSON file")
	_ = sourceCmd.MarkFlagRequired("requirements")
	_ = sourceCmd.MarkFlagRequired("quotes")
}
