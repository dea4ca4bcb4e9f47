package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

func main() {
	_ = godotenv.Load()

	defAPI := os.Getenv("API_BASE")
	if defAPI == "" {
		defAPI = "http://localhost:8080"
	}
	api := flag.String("api", defAPI, "API base URL")
	key := flag.String("key", os.Getenv("API_KEY"), "API key (admin key needed for -run)")
	run := flag.Bool("run", false, "start a new run and wait for its result")
	code := flag.String("check", domain.OutboundsCheck.Code, "check code to run with -run")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Minute}
	if !*run {
		var all []domain.CheckRunResult
		call(client, http.MethodGet, *api+"/api/checks", *key, &all)
		if len(all) == 0 {
			fmt.Println("No results yet; try -run.")
			return
		}
		failed := false
		for _, res := range all {
			printResult(res)
			failed = failed || res.State == domain.CheckError
		}
		if failed {
			os.Exit(2)
		}
		return
	}

	var res domain.CheckRunResult
	call(client, http.MethodPost, *api+"/api/checks/"+*code+"/run", *key, &res)
	printResult(res)
	if res.State == domain.CheckError {
		os.Exit(2)
	}
}

// call performs one API request and decodes a 200 body into out; anything
// else ends the program.
func call(client *http.Client, method, url, key string, out any) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		fail(err.Error())
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := client.Do(req)
	if err != nil {
		fail("Error contacting API: " + err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		fail("Unknown check.")
	case http.StatusConflict:
		fail("A run is already in progress.")
	default:
		fail("API returned status: " + resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fail("Bad response: " + err.Error())
	}
}

func printResult(res domain.CheckRunResult) {
	head := color.New(color.Bold)
	switch res.State {
	case domain.CheckSuccess:
		head.Add(color.FgGreen)
	case domain.CheckError:
		head.Add(color.FgRed)
	default:
		head.Add(color.FgYellow)
	}
	head.Printf("%s: %s\n", res.Title, res.Description)

	ok, bad := color.New(color.FgGreen).SprintFunc(), color.New(color.FgRed).SprintFunc()
	for _, it := range res.Items {
		mark := ok("✔")
		if it.State == domain.ItemError {
			mark = bad("✖")
		}
		fmt.Printf("  %s %-24s %s\n", mark, it.Key, it.Value)
	}
	if !res.UpdatedAt.IsZero() {
		color.New(color.Faint).Printf("updated %s\n", res.UpdatedAt.Local().Format(time.RFC1123))
	}
}

func fail(msg string) {
	color.New(color.FgRed).Fprintln(os.Stderr, msg)
	os.Exit(1)
}
