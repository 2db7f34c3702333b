package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	call := flag.String("call", "", "call one tool and exit instead of starting the REPL")
	rawArgs := flag.String("args", "{}", "JSON arguments for -call")
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client [-call tool [-args json]] <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client sysmon mcp")
		fmt.Fprintln(os.Stderr, `Example: mcp-client -call get_processes -args '{"sort_key":"mem","limit":5}' sysmon mcp`)
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "sysmon-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	if *call != "" {
		var toolArgs map[string]any
		if err := json.Unmarshal([]byte(*rawArgs), &toolArgs); err != nil {
			log.Fatalf("Invalid -args JSON: %v", err)
		}
		if !callTool(ctx, session, *call, toolArgs) {
			os.Exit(1)
		}
		return
	}

	repl(ctx, session)
}

func repl(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Connected to sysmon MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                    - List available tools")
	fmt.Println("  /metrics                  - Latest memory and CPU percentages")
	fmt.Println("  /history                  - Latest sample plus the rolling windows")
	fmt.Println("  /ps [sort] [filter] [n]   - Process census (sort: pid, cpu, mem, name)")
	fmt.Println("  /log [n]                  - Most recent usage log rows")
	fmt.Println("  /exit                     - Exit the client")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "/exit", "/quit":
			fmt.Println("Goodbye!")
			return
		case "/tools":
			listTools(ctx, session)
		case "/metrics":
			callTool(ctx, session, "get_current_metrics", map[string]any{})
		case "/history":
			callTool(ctx, session, "get_current_metrics", map[string]any{"include_history": true})
		case "/ps":
			callTool(ctx, session, "get_processes", processArgs(fields[1:]))
		case "/log":
			callTool(ctx, session, "get_usage_log", limitArg(fields[1:]))
		default:
			fmt.Println("Unknown command; try /tools")
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

// callTool prints the result and reports whether the call succeeded.
func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) bool {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return false
	}

	printResult(result)
	return !result.IsError
}

// processArgs maps "/ps [sort] [filter] [limit]" onto get_processes arguments.
func processArgs(parts []string) map[string]any {
	args := map[string]any{}
	if len(parts) > 0 {
		args["sort_key"] = parts[0]
	}
	if len(parts) > 1 {
		args["filter"] = parts[1]
	}
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			args["limit"] = n
		}
	}
	return args
}

func limitArg(parts []string) map[string]any {
	args := map[string]any{}
	if len(parts) > 0 {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			args["limit"] = n
		}
	}
	return args
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(indentJSON(v.Text))
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}

// indentJSON pretty-prints s when it is JSON and returns it unchanged otherwise.
func indentJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
