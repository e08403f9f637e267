package registry

import "context"

// stubResolveType returns a hook that always resolves to name.
func stubResolveType(name string) TypeResolverFunc {
	return func(ctx context.Context, value any) (string, error) { return name, nil }
}

// stubPredicate returns a predicate with a fixed answer.
func stubPredicate(answer bool) PredicateFunc {
	return func(ctx context.Context, value any) (bool, error) { return answer, nil }
}
