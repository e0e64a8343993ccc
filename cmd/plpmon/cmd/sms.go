package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"plp-monitor/internal/config"
	"plp-monitor/internal/notify"
)

const testSMSBody = "🧪 Test message from PLP Monitor - If you receive this, SMS is working correctly!"

// testSMSCmd represents the test-sms command.
var testSMSCmd = &cobra.Command{
	Use:   "test-sms",
	Short: "Send a test SMS to verify the Twilio setup",
	Long: `Check that the four Twilio values are present and send one test message
to the configured recipient. Exits with status 1 when anything is missing or
Twilio rejects the message.`,
	Run: runTestSMS,
}

func init() {
	rootCmd.AddCommand(testSMSCmd)
}

// runTestSMS executes the test-sms command logic.
func runTestSMS(cmd *cobra.Command, args []string) {
	if err := config.LoadEnvFile(GetEnvFile()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	sms := cfg.Notify.SMS

	fmt.Println("Checking configuration...")
	fmt.Printf("%s: %s\n", config.EnvTwilioAccountSID, setOrMissing(sms.AccountSID != "", "✓ Set"))
	fmt.Printf("%s: %s\n", config.EnvTwilioAuthToken, setOrMissing(sms.AuthToken != "", "✓ Set"))
	fmt.Printf("%s: %s\n", config.EnvTwilioPhoneFrom, setOrMissing(sms.From != "", sms.From))
	fmt.Printf("%s: %s\n", config.EnvTwilioPhoneTo, setOrMissing(sms.To != "", sms.To))
	fmt.Println()

	if !sms.IsConfigured() {
		fmt.Fprintln(os.Stderr, "❌ Missing Twilio credentials. Set the environment variables above or add them to .env.")
		os.Exit(1)
	}

	cfg.Logging = resolveLogging(cfg.Logging)
	logger := setupLogger(cfg.Logging)
	notifier := notify.NewSMSNotifier(sms, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Sending test SMS...")
	sent, err := notifier.SendMessage(ctx, testSMSBody)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n✗ ERROR: %v\n", err)
		fmt.Fprintln(os.Stderr, "\nCommon issues:")
		fmt.Fprintln(os.Stderr, "1. Wrong Account SID or Auth Token")
		fmt.Fprintln(os.Stderr, "2. Phone numbers not in E.164 format (should be: +1234567890)")
		fmt.Fprintln(os.Stderr, "3. For trial accounts: the 'To' number must be verified in the Twilio console")
		fmt.Fprintln(os.Stderr, "4. The 'From' number must be a Twilio number you own")
		cancel()
		os.Exit(1)
	}

	fmt.Println("\n✓ SUCCESS!")
	fmt.Printf("Message SID: %s\n", sent.SID)
	fmt.Printf("Status: %s\n", sent.Status)
	fmt.Printf("From: %s\n", sent.From)
	fmt.Printf("To: %s\n", sent.To)
	fmt.Println("\nCheck your phone for the test message!")
}

// setOrMissing renders a credential check line.
func setOrMissing(ok bool, shown string) string {
	if ok {
		return shown
	}
	return "✗ Missing"
}
