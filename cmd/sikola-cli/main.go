package main

import (
	"context"

	"sikola-tools/cmd/sikola-cli/commands"
	"sikola-tools/pkg/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
