package main // import "github.com/CAVEconnectome/datastore-flex/cmd/flexconfig"

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	datastoreflex "github.com/CAVEconnectome/datastore-flex"
	"github.com/CAVEconnectome/datastore-flex/clouddatastore"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("flexconfig: ")

	var (
		project    = flag.String("project", "", "project id (default $PROJECT_ID)")
		namespace  = flag.String("namespace", "", "datastore namespace the config applies to")
		configFile = flag.String("config", "", "JSON file mapping property names to {bucket_path, path_elements}")
		show       = flag.Bool("show", false, "print the stored column config and exit")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), heredoc.Doc(`
			flexconfig installs or prints the column config entity of a namespace.

			  flexconfig -namespace fly -config columns.json
			  flexconfig -namespace fly -show

			columns.json example:

			  {
			    "segmentation": {
			      "bucket_path": "gs://my-bucket/segmentation",
			      "path_elements": ["group_id", "user_id"]
			    }
			  }

		`))
		flag.PrintDefaults()
	}
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	ctx := context.Background()
	opts := []datastoreflex.ClientOption{
		datastoreflex.WithNamespace(*namespace),
	}
	if *project != "" {
		opts = append(opts, datastoreflex.WithProjectID(*project))
	}
	ds, err := clouddatastore.FromContext(ctx, opts...)
	if err != nil {
		log.Fatal(err)
	}
	client := datastoreflex.NewClient(ds)
	defer client.Close()

	if *show {
		cfg, err := client.Config(ctx)
		if err != nil {
			log.Fatal(err)
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(b))
		return
	}

	if *configFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	cfg := datastoreflex.Config{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Fatal(err)
	}

	if _, err := client.AddConfig(ctx, cfg); err != nil {
		log.Fatal(err)
	}
	log.Printf("configured %d properties in namespace %q", len(cfg), *namespace)
}
