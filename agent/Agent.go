// Package agent defines the contracts shared by every agent in this
// module, together with the configuration used to construct them.
//
// Agents are generic over the state type S and action type A, both of
// which only need to be comparable. A state with no legal actions is
// terminal: its value is 0 and it has no policy action.
package agent

// ValueEstimator estimates state-action values and derives a policy
// from them.
type ValueEstimator[S, A comparable] interface {
	// QValue returns the estimated value of taking action in state
	QValue(state S, action A) float64

	// Value returns the maximum QValue over the legal actions in state,
	// or 0 if state is terminal
	Value(state S) float64

	// Policy returns the action with the highest QValue in state. The
	// returned bool is false if state is terminal.
	Policy(state S) (A, bool)
}

// Learner implements a learning algorithm that defines how estimates
// are improved from experience.
type Learner[S, A comparable] interface {
	// Update observes the transition state --action--> nextState which
	// paid reward. Controllers call Update exactly once per transition.
	Update(state S, action A, nextState S, reward float64)

	// Final is called at the end of each episode with the last state
	// observed. It is only used for bookkeeping.
	Final(state S)
}

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a ValueEstimator, which tracks value
// estimates, a Learner, which improves them, and an action selection
// rule, which may explore.
type Agent[S, A comparable] interface {
	ValueEstimator[S, A]
	Learner[S, A]

	// Action returns the action to take in state. The returned bool is
	// false if state is terminal.
	Action(state S) (A, bool)
}

// Explorer is an Agent whose action selection explores with some
// probability epsilon
type Explorer[S, A comparable] interface {
	Agent[S, A]
	SetEpsilon(float64)
	Epsilon() float64
}

// Trainer is an Agent which tracks how many training episodes it was
// configured for. Controllers use it to decide when to stop learning;
// the agent itself never stops.
type Trainer[S, A comparable] interface {
	Agent[S, A]

	// Episodes returns the number of episodes completed so far, as
	// counted by calls to Final
	Episodes() int

	// Training returns whether fewer than NumTraining episodes have
	// been completed
	Training() bool
}
