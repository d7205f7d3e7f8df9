// Package signal sends Signal messages through signal-cli.
//
// The client wraps the signal-cli command-line tool, which must be installed
// and registered for the sending phone number:
//
//	signal-cli -u +15551234567 register
//	signal-cli -u +15551234567 verify CODE
//
// Example usage:
//
//	client, err := signal.NewClient("+15551234567")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.SendMessage(ctx, "+15559876543", "Sync booked for Tue 10:00")
package signal
