// Script to exercise Bridge API calls against a live host.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/magodo/slog2hclog"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/uwtools/go-bridge/pkg/clients/bridge"
	"github.com/uwtools/go-bridge/pkg/config"
)

func getLogger() hclog.Logger {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelWarn)

	return slog2hclog.New(slog.Default(), logLevel)
}

func main() {
	var (
		action = kingpin.Flag("action", "Action to perform").Required().
			Enum("GetUser", "GetAllUsers", "GetCustomFields", "GetRoles", "DeleteUser", "RestoreUser")
		host        = kingpin.Flag("host", "The Bridge server host").Envar("BRIDGE_HOST").Required().String()
		authKey     = kingpin.Flag("auth-key", "Basic auth key").Envar("BRIDGE_AUTH_KEY").Required().String()
		authSecret  = kingpin.Flag("auth-secret", "Basic auth secret").Envar("BRIDGE_AUTH_SECRET").Required().String()
		emailDomain = kingpin.Flag("email-domain", "Email domain appended to netids").
				Default(config.DefaultEmailDomain).String()
		netid         = kingpin.Flag("netid", "Netid of the user to operate on").String()
		courseSummary = kingpin.Flag("course-summary", "Include course summary data").Bool()
		customFields  = kingpin.Flag("custom-fields", "Include custom fields on listings").Bool()
	)

	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	cfg := &config.Config{
		Host: *host,
		Auth: commoncfg.SecretRef{
			Type: commoncfg.BasicSecretType,
			Basic: commoncfg.BasicAuth{
				Username: commoncfg.SourceRef{
					Source: commoncfg.EmbeddedSourceValue,
					Value:  *authKey,
				},
				Password: commoncfg.SourceRef{
					Source: commoncfg.EmbeddedSourceValue,
					Value:  *authSecret,
				},
			},
		},
		Params: config.Params{EmailDomain: *emailDomain},
	}

	client, err := bridge.NewClient(cfg, getLogger())
	if err != nil {
		fmt.Println("Error creating Bridge client:", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	users, err := bridge.NewUsers(ctx, client)
	if err != nil {
		fmt.Println("Error loading Bridge catalogs:", err.Error())
		os.Exit(1)
	}

	switch *action {
	case "GetUser":
		getUser(ctx, users, *netid, *courseSummary)
	case "GetAllUsers":
		getAllUsers(ctx, users, *courseSummary, *customFields)
	case "GetCustomFields":
		for _, field := range users.CustomFields().Fields() {
			fmt.Println(field.FieldID, field.Name)
		}
	case "GetRoles":
		for _, role := range users.UserRoles().Roles() {
			fmt.Println(role.ID, role.Name)
		}
	case "DeleteUser":
		deleteUser(ctx, users, *netid)
	case "RestoreUser":
		restoreUser(ctx, users, *netid)
	}
}

func getUser(ctx context.Context, users *bridge.Users, netid string, courseSummary bool) {
	user, err := users.GetUser(ctx, netid, bridge.GetOptions{
		IncludeCourseSummary: courseSummary,
		IncludeManager:       true,
	})
	if err != nil {
		fmt.Println("Error getting user:", err.Error())
		os.Exit(1)
	}

	fmt.Printf("Found user %d %s (%s)\n", user.BridgeID, user.FullName, user.Email)

	for name, field := range user.CustomFields {
		if field.Value != nil {
			fmt.Println(" ", name, "=", *field.Value)
		}
	}

	for _, role := range user.Roles {
		fmt.Println("  role:", role.ID)
	}
}

func getAllUsers(ctx context.Context, users *bridge.Users, courseSummary, customFields bool) {
	all, err := users.GetAllUsers(ctx, bridge.ListOptions{
		IncludeCourseSummary: courseSummary,
		IncludeCustomFields:  customFields,
		ExcludeDeleted:       true,
	})
	if err != nil {
		fmt.Println("Error listing users:", err.Error())
		os.Exit(1)
	}

	fmt.Println("Found", len(all), "users")

	for _, user := range all {
		fmt.Printf("%d %s %s\n", user.BridgeID, user.NetID, user.FullName)
	}
}

func deleteUser(ctx context.Context, users *bridge.Users, netid string) {
	deleted, err := users.DeleteUser(ctx, netid)
	if err != nil {
		fmt.Println("Error deleting user:", err.Error())
		os.Exit(1)
	}

	fmt.Println("Deleted:", deleted)
}

func restoreUser(ctx context.Context, users *bridge.Users, netid string) {
	user, err := users.RestoreUser(ctx, netid, bridge.GetOptions{IncludeManager: true})
	if err != nil {
		fmt.Println("Error restoring user:", err.Error())
		os.Exit(1)
	}

	fmt.Printf("Restored user %d %s\n", user.BridgeID, user.NetID)
}
