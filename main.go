package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/coachmail/internal/ai"
	"github.com/example/coachmail/internal/config"
	"github.com/example/coachmail/internal/database"
	"github.com/example/coachmail/internal/delivery"
	"github.com/example/coachmail/internal/excel"
	"github.com/example/coachmail/internal/mail"
	"github.com/example/coachmail/internal/scheduler"
)

func main() {
	// .env is optional; deployments set the environment directly
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "coachmail",
		Short: "Twelve-week coaching content delivery engine",
	}
	root.AddCommand(serveCmd(), deliverCmd(), importCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd runs the hourly delivery trigger until interrupted
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the hourly delivery sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Connect()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.New(newOrchestrator(ctx, store))
			sched.Start(ctx)
			log.Println("Delivery engine started. Press Ctrl+C to stop.")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			sig := <-sigChan
			log.Printf("Received signal: %v", sig)

			cancel()
			sched.Stop()
			log.Println("Delivery engine stopped")
			return nil
		},
	}
}

// deliverCmd is the manual trigger surface for a single recipient
func deliverCmd() *cobra.Command {
	var recipientID string

	cmd := &cobra.Command{
		Use:   "deliver",
		Short: "Deliver this week's content to one recipient immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Connect()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			if err := newOrchestrator(ctx, store).DeliverNow(ctx, recipientID); err != nil {
				return err
			}
			log.Printf("Delivered to recipient %s", recipientID)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipientID, "recipient", "", "recipient ID")
	cmd.MarkFlagRequired("recipient")
	return cmd
}

// importCmd bulk-enrolls recipients from an Excel or CSV file
func importCmd() *cobra.Command {
	var file, sheet string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import recipient enrollments from an Excel or CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Connect()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := excel.DefaultImportConfig()
			cfg.FilePath = file
			if sheet != "" {
				cfg.SheetName = sheet
			}

			result, err := excel.ImportRecipients(context.Background(), store, cfg)
			if err != nil {
				return err
			}

			log.Printf("Import complete: processed=%d created=%d updated=%d skipped=%d",
				result.TotalProcessed, result.Created, result.Updated, result.Skipped)
			for _, e := range result.Errors {
				log.Printf("Import error: %s", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the enrollment file")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name for Excel files")
	cmd.MarkFlagRequired("file")
	return cmd
}

// newOrchestrator assembles the delivery orchestrator and its
// collaborators from the environment
func newOrchestrator(ctx context.Context, store *database.Store) *delivery.Orchestrator {
	var generator *ai.Generator
	client, err := ai.New()
	if err != nil {
		log.Printf("Text generation disabled, using fallback content only: %v", err)
		generator = ai.NewGenerator(nil)
	} else {
		generator = ai.NewGenerator(client)
	}

	return delivery.New(store, generator, newSender(ctx), config.FromEnv())
}

// newSender picks the mail transport: SES when configured, a logging
// dry-run sender otherwise
func newSender(ctx context.Context) mail.Sender {
	if os.Getenv("SES_FROM_EMAIL") == "" {
		log.Println("SES_FROM_EMAIL not set, mail runs in dry-run mode")
		return &mail.LogSender{}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Failed to load AWS config, mail runs in dry-run mode: %v", err)
		return &mail.LogSender{}
	}

	sender, err := mail.NewSESSender(awsCfg)
	if err != nil {
		log.Printf("Failed to create SES sender, mail runs in dry-run mode: %v", err)
		return &mail.LogSender{}
	}
	return sender
}
