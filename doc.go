// Package liberfly implements the account backend for the LiberFly API:
// password credential verification, opaque bearer tokens persisted through
// Bun repositories, user registration, and Fiber HTTP controllers.
//
// Tokens:
//   - Issued tokens are random opaque values stored in the access_tokens
//     table. Validation looks the presented value up in the store, so a
//     token stops working the moment its row is revoked or expires.
//   - Issuer controls the lifetime. The default lifetime comes from config;
//     extended sessions (remember me) get a longer window. A zero lifetime
//     produces a token that never expires, rendered as a null expires_at.
//
// Repositories:
//   - Users and AccessTokens embed the generic Bun repository and add the
//     bespoke lookups the controllers need (email lookup, token lookup,
//     revocation, expired-token purge). RepositoryManager groups them and
//     exposes RunInTx for multi-step writes such as registration.
//
// HTTP:
//   - APIController mounts /login, /register, /logout, /user/index, and
//     /user/:id. Protected routes sit behind the bearerware middleware,
//     which resolves the Authorization header against the token store and
//     deposits a Grant in the request context.
package liberfly
