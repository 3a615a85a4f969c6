// Markup contract checker
// Runs fixture notes through the content pipeline and verifies the
// produced HTML parses and carries the attributes the external
// renderer and DOM patcher rely on.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nbd-wtf/go-nostr/nip19"
	"golang.org/x/net/html"

	"github.com/htsula/noornote/content"
	"github.com/htsula/noornote/profile"
)

// CheckResult represents a single validation check result
type CheckResult struct {
	Fixture string
	Rule    string
	Passed  bool
	Message string
}

var verbose bool

// fixtureService resolves every pubkey to a canned profile.
type fixtureService struct{}

func (fixtureService) GetUserProfile(ctx context.Context, pubkey string) (*profile.Profile, error) {
	return &profile.Profile{PubKey: pubkey, Name: "fixture", Picture: "https://example.com/a.png"}, nil
}

func (s fixtureService) GetUserProfiles(ctx context.Context, pubkeys []string) (map[string]*profile.Profile, error) {
	out := make(map[string]*profile.Profile, len(pubkeys))
	for _, pk := range pubkeys {
		p, _ := s.GetUserProfile(ctx, pk)
		out[pk] = p
	}
	return out, nil
}

func fixtures() map[string]string {
	pk := strings.Repeat("ab", 32)
	npub, _ := nip19.EncodePublicKey(pk)
	nprofile, _ := nip19.EncodeProfile(pk, []string{"wss://relay.damus.io"})
	note, _ := nip19.EncodeNote(strings.Repeat("cd", 32))

	return map[string]string{
		"plain":         "Hello #nostr world",
		"media+hashtag": "Hello #nostr https://example.com/cat.jpg",
		"url-fragment":  "see http://x.com/a#tag please",
		"bare-mention":  "gm nostr:" + npub,
		"hint-mention":  "gm nostr:" + nprofile,
		"quote":         "look at nostr:" + note,
		"multiline":     "one\ntwo #tags",
		"hostile":       `<script>alert(1)</script> & "quotes" npub1notvalidchecksum`,
	}
}

func main() {
	flag.BoolVar(&verbose, "v", false, "Verbose output")
	flag.Parse()

	fmt.Printf("Markup contract checker\n")
	fmt.Printf("=======================\n\n")

	cache := profile.NewCache(fixtureService{})
	pipeline := content.NewPipeline(cache)

	var results []CheckResult
	for name, text := range fixtures() {
		out := pipeline.Process(text, nil)
		results = append(results, checkFixture(name, out)...)
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		if verbose || !r.Passed {
			fmt.Printf("[%s] %-14s %-24s %s\n", status, r.Fixture, r.Rule, r.Message)
		}
	}

	fmt.Printf("\n%d checks, %d failed\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func checkFixture(name string, out content.ProcessedContent) []CheckResult {
	var results []CheckResult
	add := func(rule string, passed bool, message string) {
		results = append(results, CheckResult{Fixture: name, Rule: rule, Passed: passed, Message: message})
	}

	root, err := html.Parse(strings.NewReader(out.HTML))
	if err != nil {
		add("parses", false, err.Error())
		return results
	}
	add("parses", true, "")

	add("no-raw-script", !strings.Contains(out.HTML, "<script"), "script tag leaked into output")

	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "a":
			if attr(n, "class") == "mention" {
				href := attr(n, "href")
				add("mention-href", strings.HasPrefix(href, "/profile/"), href)
				add("mention-pubkey", attr(n, "data-pubkey") != "", "missing data-pubkey")
				if attr(n, "data-pending") == "true" {
					add("pending-text", textOf(n) == "…", textOf(n))
				}
			}
		case "span":
			switch attr(n, "class") {
			case "hashtag":
				add("hashtag-data-tag", attr(n, "data-tag") != "", "missing data-tag")
			case "quote-placeholder":
				add("quote-ref", attr(n, "data-quote-ref") != "", "missing data-quote-ref")
			}
		}
	})

	for i := range out.Media {
		token := fmt.Sprintf("__MEDIA_%d__", i)
		add("media-token", strings.Contains(out.HTML, token), token+" missing")
	}

	return results
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
