package main

import (
	"errors"
	"fmt"
	"time"

	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var tenant, operator, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator JWT for local use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("--tenant: %w", err)
			}
			if a.cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is required")
			}

			tokens := service.NewJWTTokenService(a.cfg.JWT.Secret, a.cfg.JWT.Expiry, a.cfg.JWT.Issuer)
			token, expiry, err := tokens.Generate(ports.OperatorClaims{
				TenantID:   tenantID,
				OperatorID: operator,
				Role:       role,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiry.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&operator, "operator", "", "operator id")
	cmd.Flags().StringVar(&role, "role", ports.RoleCashier, "operator role: cashier or manager")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}
