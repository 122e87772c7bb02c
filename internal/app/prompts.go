package app

import (
	"math/rand"
	"sync"
)

// PromptSource supplies writing prompts for new rounds
type PromptSource interface {
	Next() string
}

// StaticPrompts cycles through a shuffled copy of a built-in prompt list
type StaticPrompts struct {
	prompts []string
	next    int
	mu      sync.Mutex
}

// NewStaticPrompts creates a prompt source over the built-in corpus
func NewStaticPrompts() *StaticPrompts {
	prompts := make([]string, len(defaultPrompts))
	copy(prompts, defaultPrompts)
	rand.Shuffle(len(prompts), func(i, j int) {
		prompts[i], prompts[j] = prompts[j], prompts[i]
	})
	return &StaticPrompts{prompts: prompts}
}

// Next returns the next prompt, wrapping around when the list is exhausted
func (p *StaticPrompts) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	prompt := p.prompts[p.next%len(p.prompts)]
	p.next++
	return prompt
}

// Prompts that invite short, personal answers so a generated decoy can
// plausibly hide among them
var defaultPrompts = []string{
	// Would-you-rather / preferences
	"What food could you eat every day for a month?",
	"What's the most overrated movie of all time?",
	"What superpower would be the most annoying to have?",
	"What's the worst name you could give a pet?",
	"What would you buy first after winning the lottery?",
	"What's the best excuse for being late?",

	// Confessions
	"What's the weirdest thing you've ever googled?",
	"What's a hill you will absolutely die on?",
	"What's the most embarrassing song you secretly love?",
	"What's something everyone loves that you can't stand?",
	"What's the laziest thing you've ever done?",

	// Hypotheticals
	"What would you do first during a zombie apocalypse?",
	"If animals could talk, which would be the rudest?",
	"What's the worst thing to say at a job interview?",
	"What should be illegal but isn't?",
	"What would aliens find most confusing about humans?",
	"What's the worst possible theme for a birthday party?",

	// Everyday life
	"What's the most useless item in your home?",
	"What smell instantly takes you back to childhood?",
	"What's the strangest compliment you've ever received?",
	"What chore would you pay any amount of money to never do again?",
	"What's the worst fashion trend you ever followed?",

	// Absurd
	"What's the best thing to yell in a crowded elevator?",
	"What would your villain origin story be?",
	"What's the worst superpower sidekick name imaginable?",
	"What food combination should be a crime?",
	"What's the most suspicious thing you could say to a border agent?",
}
