package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-enroll/pkg/endpoint"
	"github.com/goliatone/go-enroll/pkg/student"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	operationID := flag.String("operation", "addStudent", "create-student operation ID")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-operation id] documents...\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nCheck that OpenAPI documents declare the create-student operation and every draft field.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var violations []violation
	for _, path := range paths {
		linted, err := lintDocument(ctx, path, *operationID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintDocument(ctx context.Context, path, operationID string) ([]violation, error) {
	raw, err := endpoint.Load(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	ep, err := endpoint.Resolve(ctx, raw, operationID)
	if err != nil {
		return []violation{{file: path, location: "operation " + operationID, message: err.Error()}}, nil
	}
	fmt.Printf("%s: %s\n", path, ep)

	props, err := endpoint.RequestProperties(ctx, raw, operationID)
	if err != nil {
		return nil, err
	}
	return missingFields(path, operationID, props), nil
}

// missingFields reports draft fields the request body does not declare. A
// body without declared properties is not checked.
func missingFields(file, operationID string, props []string) []violation {
	if len(props) == 0 {
		return nil
	}
	declared := make(map[string]struct{}, len(props))
	for _, p := range props {
		declared[p] = struct{}{}
	}

	var result []violation
	for _, f := range student.Fields() {
		if _, ok := declared[string(f)]; ok {
			continue
		}
		result = append(result, violation{
			file:     file,
			location: formatLocation([]string{"operation", operationID, "requestBody", "properties"}),
			message:  fmt.Sprintf("draft field %q is not declared", f),
		})
	}
	return result
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
