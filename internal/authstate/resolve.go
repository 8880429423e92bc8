package authstate

import "strings"

// Well-known paths used by redirect decisions.
const (
	PathHome       = "/"
	PathLogin      = "/login"
	PathSignup     = "/signup"
	PathOnboarding = "/onboarding"
)

// Decision is the outcome of resolving a requested path against a state:
// either render the target view or redirect somewhere else first.
type Decision struct {
	Render     bool
	RedirectTo string
}

func render() Decision {
	return Decision{Render: true}
}

func redirect(to string) Decision {
	return Decision{RedirectTo: to}
}

// routeKind classifies a path by who may see it.
type routeKind int

const (
	// routeProtected requires a fully onboarded session.
	routeProtected routeKind = iota
	// routeAnonymousOnly is reachable only without a session (login, signup).
	routeAnonymousOnly
	// routeOnboarding is reachable only mid-onboarding.
	routeOnboarding
)

// classify maps a requested path to its route kind. Parameterized routes
// (/chat/{id}, /call/{id}) match on their first segment; unknown paths get
// the protected rule so nothing new is ever reachable anonymously by default.
func classify(path string) routeKind {
	switch firstSegment(path) {
	case "login", "signup":
		return routeAnonymousOnly
	case "onboarding":
		return routeOnboarding
	default:
		return routeProtected
	}
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx != -1 {
		path = path[:idx]
	}
	return path
}

// Resolve decides what happens when a session in the given state requests a
// path. It is a total, pure function of its inputs: the caller evaluates it
// synchronously from cached flags before any view mounts.
func Resolve(state State, path string) Decision {
	switch classify(path) {
	case routeAnonymousOnly:
		switch state {
		case Anonymous:
			return render()
		case PendingOnboarding:
			return redirect(PathOnboarding)
		default:
			return redirect(PathHome)
		}

	case routeOnboarding:
		switch state {
		case Anonymous:
			return redirect(PathLogin)
		case PendingOnboarding:
			return render()
		default:
			return redirect(PathHome)
		}

	default: // routeProtected
		switch state {
		case Anonymous:
			return redirect(PathLogin)
		case PendingOnboarding:
			return redirect(PathOnboarding)
		default:
			return render()
		}
	}
}
