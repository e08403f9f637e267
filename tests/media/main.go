package main

import (
	"context"
	"flag"
	"log"

	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/hanpama/typegraph/internal/consistency"
	"github.com/hanpama/typegraph/internal/engine"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/logging"
	"github.com/hanpama/typegraph/internal/protovalue"
	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/strategy"
)

// mediaBuilder declares the Media union with three variants, each carrying a
// shape predicate and a static discriminant literal.
func mediaBuilder() *registry.Builder {
	b := registry.NewBuilder()

	must(b.RegisterAbstractType(registry.AbstractType{
		Name:     "Media",
		Kind:     registry.KindUnion,
		Variants: []string{"Photo", "Movie", "Song"},
	}))
	must(b.RegisterVariant(registry.Variant{Name: "Photo", Discriminant: "Photo"}))
	must(b.RegisterVariant(registry.Variant{Name: "Movie", Discriminant: "Movie"}))
	must(b.RegisterVariant(registry.Variant{Name: "Song", Discriminant: "Song"}))

	must(b.BindIsTypeOf("Photo", hasKey("width")))
	must(b.BindIsTypeOf("Movie", hasKey("rating")))
	must(b.BindIsTypeOf("Song", hasKey("album")))
	return b
}

func hasKey(key string) registry.PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return false, nil
		}
		_, ok = m[key]
		return ok, nil
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	env := flag.String("env", "development", "consistency environment (development or production)")
	flag.Parse()

	eventbus.Use(eventbus.New())
	logger := logging.Setup("debug", "console")
	defer logging.Attach(logger)()

	ctx := context.Background()

	environment := consistency.EnvDevelopment
	if *env == "production" {
		environment = consistency.EnvProduction
	}

	// Sample values shaped like the three variants.
	samples := []map[string]any{
		{"width": 800, "url": "https://example.com/sunrise.jpg"},
		{"rating": 4.5, "title": "The Go Documentary"},
		{"album": "Blue Train", "title": "Moment's Notice"},
	}

	// Predicate resolution: each value is classified by the first variant
	// predicate that claims it.
	eng, err := engine.Build(mediaBuilder(),
		engine.WithStrategy(strategy.Configure(strategy.WithIsTypeOf(true))),
	)
	if err != nil {
		log.Fatalf("build predicate engine: %v", err)
	}
	for _, v := range samples {
		res, err := eng.Resolve(ctx, "Media", v)
		if err != nil {
			log.Fatalf("resolve %v: %v", v, err)
		}
		log.Printf("predicate: %v resolved to %s via %s", v, res.Variant, res.Strategy)
	}

	// Centralized hook with runtime consistency checks. The hook answer is
	// authoritative; a conflicting discriminant on the value is reported in
	// development and rejected in production.
	b := mediaBuilder()
	must(b.BindResolveType("Media", func(ctx context.Context, value any) (string, error) {
		m, _ := value.(map[string]any)
		switch {
		case m["album"] != nil:
			return "Song", nil
		case m["rating"] != nil:
			return "Movie", nil
		default:
			return "Photo", nil
		}
	}))
	eng, err = engine.Build(b, engine.WithEnvironment(environment))
	if err != nil {
		log.Fatalf("build hook engine: %v", err)
	}

	conflicted := map[string]any{"album": "Blue Train", "__typename": "Photo"}
	res, err := eng.Resolve(ctx, "Media", conflicted)
	if err != nil {
		log.Printf("hook: resolution rejected: %v", err)
	} else {
		log.Printf("hook: %v resolved to %s despite conflicting __typename", conflicted, res.Variant)
	}

	// Discriminant resolution over a protobuf message: the typename field of
	// the dynamic message names the concrete variant.
	msg, err := songMessage()
	if err != nil {
		log.Fatalf("build message: %v", err)
	}
	eng, err = engine.Build(mediaBuilder(),
		engine.WithStrategy(strategy.Configure(strategy.WithTypenameField(true))),
		engine.WithDiscriminant(protovalue.Discriminant),
	)
	if err != nil {
		log.Fatalf("build discriminant engine: %v", err)
	}
	res, err = eng.Resolve(ctx, "Media", msg)
	if err != nil {
		log.Fatalf("resolve message: %v", err)
	}
	log.Printf("protobuf: %s resolved to %s via %s", msg.Descriptor().FullName(), res.Variant, res.Strategy)
}

// songMessage builds a dynamic protobuf message carrying a typename field.
func songMessage() (*dynamicpb.Message, error) {
	pb := protobuilder.NewFile("media.proto")
	pb.SetPackageName(protoreflect.FullName("media"))
	pb.SetSyntax(protoreflect.Proto3)

	mb := protobuilder.NewMessage(protoreflect.Name("SongRecord"))
	typename := protobuilder.NewField(protoreflect.Name("typename"), protobuilder.FieldTypeScalar(protoreflect.StringKind))
	typename.SetNumber(1)
	mb.AddField(typename)
	album := protobuilder.NewField(protoreflect.Name("album"), protobuilder.FieldTypeScalar(protoreflect.StringKind))
	album.SetNumber(2)
	mb.AddField(album)
	pb.AddMessage(mb)

	fd, err := pb.Build()
	if err != nil {
		return nil, err
	}
	md := fd.Messages().ByName(protoreflect.Name("SongRecord"))
	msg := dynamicpb.NewMessage(md)
	msg.Set(md.Fields().ByName(protoreflect.Name("typename")), protoreflect.ValueOfString("Song"))
	msg.Set(md.Fields().ByName(protoreflect.Name("album")), protoreflect.ValueOfString("Blue Train"))
	return msg, nil
}
