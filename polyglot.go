// Package polyglot provides an AI-backed text translation service with
// usage accounting and a bounded translation history.
//
// Polyglot forwards translation and language detection requests to a
// generative AI provider, counts translations per language and language
// pair, and keeps a most-recent-first history log from which display
// statistics are derived.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/polyglot"
//	    "github.com/ZaguanLabs/polyglot/cache"
//	    "github.com/ZaguanLabs/polyglot/provider"
//	)
//
//	func main() {
//	    p := provider.NewChatProvider(provider.ChatConfig{
//	        APIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//
//	    usage := polyglot.NewUsageCounter()
//	    t := polyglot.NewTranslator(p,
//	        polyglot.WithCache(cache.NewInMemoryCache(3600)),
//	        polyglot.WithUsageCounter(usage),
//	    )
//
//	    res, err := t.Translate(context.Background(), polyglot.TranslateRequest{
//	        Text:       "Hello World",
//	        SourceLang: polyglot.AutoDetect,
//	        TargetLang: "es",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.TranslatedText) // Hola Mundo
//	}
package polyglot
