package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/pkg/tlsutil"
)

func (a *app) newCertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Manage development TLS certificates for the gRPC server",
	}

	var (
		hosts  []string
		outDir string
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a development CA and a server certificate signed by it",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := tlsutil.GenerateSelfSignedCert(hosts, outDir); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s, %s and %s\n",
				filepath.Join(outDir, tlsutil.CAFile),
				filepath.Join(outDir, tlsutil.ServerFile),
				filepath.Join(outDir, tlsutil.ServerKeyFile),
			)
			return nil
		},
	}
	generate.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the server certificate")
	generate.Flags().StringVar(&outDir, "out", "certs", "output directory")

	cmd.AddCommand(generate)
	return cmd
}
