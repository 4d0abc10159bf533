package cmd

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the panelsim version and build time.",
		Usage: "panelsim version",
		Run: func(args []string) error {
			printVersion()
			return nil
		},
	})
}
