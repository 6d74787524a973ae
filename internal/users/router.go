package users

import (
	"context"

	"github.com/morezero/typed-rpc/pkg/rpc"
)

// Router returns the users router. Every procedure takes its Store from the
// app's dependency provider.
func Router() *rpc.Router {
	return rpc.NewRouter("users").
		Query("getUser", getUser).
		Query("listUsers", listUsers).
		Mutation("createUser", createUser)
}

func getUser(ctx context.Context, in rpc.Args[GetUserInput], store rpc.Provide[Store]) (*User, error) {
	return store.Value.Get(ctx, in.Value.ID)
}

func listUsers(ctx context.Context, in rpc.OptionalArgs[ListUsersInput], store rpc.Provide[Store]) ([]User, error) {
	return store.Value.List(ctx, in.Value)
}

func createUser(ctx context.Context, in rpc.Args[CreateUserInput], store rpc.Provide[Store]) (*User, error) {
	return store.Value.Create(ctx, in.Value)
}
