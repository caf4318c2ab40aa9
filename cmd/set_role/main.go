package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/lingobridge-backend/internal/app"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type emailList []string

func (l *emailList) String() string { return strings.Join(*l, ",") }
func (l *emailList) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var emails emailList
	var role string
	var dryRun bool
	flag.Var(&emails, "email", "student email to update (repeatable)")
	flag.StringVar(&role, "role", "admin", "role to assign: admin or student")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned changes without writing")
	flag.Parse()

	role = strings.ToLower(strings.TrimSpace(role))
	if role != "admin" && role != "student" {
		fmt.Printf("invalid -role %q\n", role)
		os.Exit(2)
	}
	if len(emails) == 0 {
		fmt.Println("at least one -email is required")
		os.Exit(2)
	}

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	rows, err := application.Repos.Student.GetByEmails(ctx, nil, emails)
	if err != nil {
		fmt.Printf("load students: %v\n", err)
		os.Exit(1)
	}
	found := make(map[string]bool, len(rows))
	for _, st := range rows {
		found[strings.ToLower(st.Email)] = true
		if string(st.Role) == role {
			fmt.Printf("%s already %s\n", st.Email, role)
			continue
		}
		if dryRun {
			fmt.Printf("would set %s: %s -> %s\n", st.Email, st.Role, role)
			continue
		}
		if _, err := application.Services.Students.Update(ctx, st.ID, services.UpdateStudentInput{Role: &role}); err != nil {
			fmt.Printf("update %s: %v\n", st.Email, err)
			os.Exit(1)
		}
		fmt.Printf("set %s to %s\n", st.Email, role)
	}
	for _, e := range emails {
		if !found[e] {
			fmt.Printf("no student with email %s\n", e)
		}
	}
}
