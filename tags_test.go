package bizdesk

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTag(t *testing.T) {
	fs, err := ParseTag("required, enum=open|closed ,default=open,min=1,max=10,ref=products")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !fs.Required || fs.AppendOnly {
		t.Fatalf("flags not parsed: %+v", fs)
	}
	if !reflect.DeepEqual(fs.Enum, []string{"open", "closed"}) {
		t.Fatalf("enum: %v", fs.Enum)
	}
	if fs.Default != "open" || fs.Ref != "products" {
		t.Fatalf("values not parsed: %+v", fs)
	}
	if fs.Min == nil || *fs.Min != 1 || fs.Max == nil || *fs.Max != 10 {
		t.Fatalf("bounds not parsed: %+v", fs)
	}
}

func TestParseTag_StampedList(t *testing.T) {
	fs, err := ParseTag("appendonly,stamp=date,default=[]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !fs.AppendOnly || fs.Stamp != "date" || fs.Default != "[]" {
		t.Fatalf("unexpected %+v", fs)
	}
}

func TestParseTag_Empty(t *testing.T) {
	fs, err := ParseTag("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Required || fs.AppendOnly || fs.Enum != nil || fs.Min != nil || fs.Default != "" {
		t.Fatalf("expected no attributes, got %+v", fs)
	}
}

func TestParseTag_Errors(t *testing.T) {
	cases := map[string]string{
		"bogus":                  "unknown option",
		"min=abc":                "not an integer",
		"required,required":      "given twice",
		"required=yes":           "takes no value",
		"ref=":                   "needs a value",
		"enum=a||b":              "empty value",
		"stamp=date":             "needs appendonly",
		"min=10,max=1":           "greater than max",
		"default=a,default=b":    "given twice",
		"appendonly,stamp":       "needs a value",
		"required,enum=x,unique": "unknown option",
	}
	for tag, msg := range cases {
		_, err := ParseTag(tag)
		if err == nil || !strings.Contains(err.Error(), msg) {
			t.Fatalf("%q: expected error containing %q, got %v", tag, msg, err)
		}
	}
}

func TestRegister_StampedListLayout(t *testing.T) {
	registerTestModels()
	schema, _ := Get("test-tickets")
	f := schema.GetField("entries")
	if f.entry == nil || f.entry.id != 0 || f.entry.stamp != 2 {
		t.Fatalf("unexpected entry layout %+v", f.entry)
	}

	type noID struct {
		Text string `json:"text"`
		At   string `json:"at"`
	}
	type badStamp struct {
		Model
		Log []noID `json:"log" bizdesk:"appendonly,stamp=at"`
	}
	if err := Register[badStamp]("test-bad-stamp", "x"); err == nil || !strings.Contains(err.Error(), "no string id") {
		t.Fatalf("expected missing id error, got %v", err)
	}

	type selfRef struct {
		Model
		Parent string `json:"parent" bizdesk:"ref=test-self-ref"`
	}
	if err := Register[selfRef]("test-self-ref", "x"); err == nil {
		t.Fatal("expected error for a ref to the record's own collection")
	}
}
