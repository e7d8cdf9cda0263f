// Package despme is the Go client for the despme semantic search API.
//
// The API sits in front of a managed embedding endpoint and a vector
// index; this client speaks its JSON contract and authenticates with an
// x-api-key header.
//
// Basic usage:
//
//	client, err := despme.New("https://api.example.com",
//		despme.WithAPIKey(os.Getenv("DESPME_API_KEY")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := client.Ingest(ctx, "Gru adopted three girls", map[string]string{
//		"character": "Gru",
//	})
//
//	results, err := client.Search(ctx, "who adopted the girls?", 5)
package despme
