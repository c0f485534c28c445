package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/transbridge/pkg/app"
)

// program adapts the application loop to the system service manager.
type program struct {
	configPath string
	errCh      chan error
}

func (p *program) Start(_ service.Service) error {
	go func() {
		p.errCh <- app.Run(app.RunParams{
			ConfigPath: p.configPath,
			Version:    version,
			Commit:     commit,
			Date:       date,
		})
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	// app.Run exits on the signal the service manager sends.
	return nil
}

func serviceConfig(configPath string) *service.Config {
	args := []string{"service", "run"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return &service.Config{
		Name:        "transbridge",
		DisplayName: "transbridge",
		Description: "Translating message bridge between LINE and WeChat Work",
		Arguments:   args,
	}
}

// serviceCmd manages running transbridge under the OS service manager
// (systemd, launchd, or Windows services).
func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage transbridge as a system service",
	}

	var configPath string
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	newService := func() (service.Service, *program, error) {
		prg := &program{configPath: configPath, errCh: make(chan error, 1)}
		svc, err := service.New(prg, serviceConfig(configPath))
		return svc, prg, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the system service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			if err := svc.Install(); err != nil {
				return err
			}
			fmt.Println("Service installed.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "uninstall",
		Short: "Remove the system service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			if err := svc.Uninstall(); err != nil {
				return err
			}
			fmt.Println("Service removed.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the installed service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			return svc.Start()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the installed service",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			return svc.Stop()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run under the service manager (invoked by the manager, not by hand)",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, prg, err := newService()
			if err != nil {
				return err
			}
			if err := svc.Run(); err != nil {
				return err
			}
			select {
			case err := <-prg.errCh:
				return err
			default:
				return nil
			}
		},
	})

	return cmd
}
