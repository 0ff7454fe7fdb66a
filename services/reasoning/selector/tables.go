// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selector

import (
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// keywordDomain is one row of the keyword table. Table order breaks score ties.
type keywordDomain struct {
	domain   string
	keywords []string
}

var domainKeywords = []keywordDomain{
	{"financial", []string{
		"transaction", "payment", "account", "balance", "trading", "stock",
		"portfolio", "investment", "currency", "forex", "bank", "credit",
		"debit", "loan", "interest", "revenue", "expense", "profit", "loss",
	}},
	{"healthcare", []string{
		"patient", "diagnosis", "medical", "treatment", "prescription", "doctor",
		"hospital", "clinic", "disease", "symptom", "medication", "health",
		"care", "clinical", "therapy", "surgery",
	}},
	{"ecommerce", []string{
		"product", "order", "cart", "customer", "inventory", "sku", "price",
		"purchase", "checkout", "shipping", "catalog", "store", "retail",
		"merchant", "vendor",
	}},
	{"network", []string{
		"node", "edge", "connection", "graph", "relationship", "link", "network",
		"social", "friend", "follower", "community", "cluster", "path",
	}},
	{"compliance", []string{
		"compliance", "regulation", "audit", "policy", "rule", "standard",
		"certification", "validation", "verification", "legal",
	}},
	{"timeseries", []string{
		"time", "temporal", "series", "sequence", "trend", "forecast", "historical",
		"timestamp", "date", "period", "interval",
	}},
	{"optimization", []string{
		"optimize", "schedule", "allocation", "resource", "capacity", "planning",
		"constraint", "objective", "minimize", "maximize",
	}},
}

// methodDomains lists the domains routed to each method.
var methodDomains = []struct {
	method  string
	domains []string
}{
	{strategy.MethodMCTS, []string{"financial", "banking", "trading", "risk_management", "fraud_detection"}},
	{strategy.MethodBeamSearch, []string{"ecommerce", "retail", "marketing", "product_catalog"}},
	{strategy.MethodChainOfThought, []string{"healthcare", "medical", "legal", "education"}},
	{strategy.MethodSelfConsistency, []string{"compliance", "validation", "audit"}},
	{strategy.MethodTreeOfThoughts, []string{"relational", "multi_table", "database"}},
	{strategy.MethodBestFirstSearch, []string{"timeseries", "sequential", "temporal"}},
	{strategy.MethodGraphOfThoughts, []string{"network", "social", "graph"}},
	{strategy.MethodReAct, []string{"realtime", "validation_required", "api_integration"}},
	{strategy.MethodReflexion, []string{"iterative", "quality_focused", "improvement"}},
	{strategy.MethodAStar, []string{"optimization", "scheduling", "resource_allocation"}},
	{strategy.MethodMetaPrompting, []string{"multi_domain", "adaptive", "cross_functional"}},
}

// domainMethod is methodDomains inverted: domain -> method.
var domainMethod = func() map[string]string {
	m := make(map[string]string)
	for _, row := range methodDomains {
		for _, d := range row.domains {
			m[d] = row.method
		}
	}
	return m
}()

// fallbackAlternatives pad the alternatives list, in order.
var fallbackAlternatives = []string{
	strategy.MethodIterativeRefinement,
	strategy.MethodChainOfThought,
	strategy.MethodReflexion,
}

var explanations = map[string]string{
	strategy.MethodMCTS:                "Monte Carlo Tree Search is ideal for financial data as it explores multiple generation paths and optimizes for realistic distributions with correlated fields.",
	strategy.MethodBeamSearch:          "Beam Search maintains top candidates during generation, ensuring diverse but high-quality outputs perfect for product catalogs and e-commerce data.",
	strategy.MethodChainOfThought:      "Chain of Thought provides step-by-step reasoning for complex constraints, ideal for healthcare, legal, and educational data with intricate relationships.",
	strategy.MethodTreeOfThoughts:      "Tree of Thoughts explores multiple reasoning branches simultaneously, perfect for complex relational data and multi-table database generation.",
	strategy.MethodSelfConsistency:     "Self-Consistency generates multiple solutions and selects the most consistent one, ensuring high-quality validation and compliance data.",
	strategy.MethodReAct:               "ReAct interleaves reasoning with actions, perfect for real-time validation and data generation that needs external API checks.",
	strategy.MethodReflexion:           "Reflexion learns from previous generation mistakes and iteratively improves, ideal for quality-focused data generation.",
	strategy.MethodBestFirstSearch:     "Best-First Search prioritizes the most promising generation paths, ideal for time-series and sequential pattern data.",
	strategy.MethodAStar:               "A* Search provides optimal path finding with heuristics, perfect for scheduling, optimization, and resource allocation data.",
	strategy.MethodMetaPrompting:       "Meta-Prompting dynamically adjusts strategies based on data domain, ideal for multi-domain and cross-functional datasets.",
	strategy.MethodIterativeRefinement: "Iterative Refinement progressively improves data quality through multiple passes, suitable for general data generation with quality requirements.",
	strategy.MethodGraphOfThoughts:     "Graph of Thoughts reasons about data as interconnected graphs, perfect for network, social, and relationship data.",
}

// MethodInfo is one entry of the method catalogue.
type MethodInfo struct {
	Method      string   `json:"method" yaml:"method"`
	Name        string   `json:"name" yaml:"name"`
	Domains     []string `json:"domains" yaml:"domains"`
	Description string   `json:"description" yaml:"description"`
}

// catalogue is in dispatcher order. Entries without Domains take theirs
// from methodDomains.
var catalogue = []MethodInfo{
	{strategy.MethodMCTS, "MCTS (Monte Carlo Tree Search)", nil, "Explores multiple generation paths and selects optimal distributions"},
	{strategy.MethodBeamSearch, "Beam Search", nil, "Maintains top-k best candidates during generation"},
	{strategy.MethodChainOfThought, "Chain of Thought (CoT)", nil, "Step-by-step reasoning for complex constraints"},
	{strategy.MethodTreeOfThoughts, "Tree of Thoughts (ToT)", nil, "Explores multiple reasoning branches simultaneously"},
	{strategy.MethodSelfConsistency, "Self-Consistency", nil, "Generates multiple solutions and selects most consistent"},
	{strategy.MethodReAct, "ReAct (Reasoning + Acting)", nil, "Interleaves reasoning with actions and external validation"},
	{strategy.MethodReflexion, "Reflexion (Self-Reflection)", nil, "Learns from mistakes and iteratively improves"},
	{strategy.MethodBestFirstSearch, "Best-First Search", nil, "Prioritizes most promising generation paths"},
	{strategy.MethodAStar, "A* Search", nil, "Optimal path finding with heuristics"},
	{strategy.MethodMetaPrompting, "Meta-Prompting", nil, "Dynamically adjusts strategy based on domain"},
	{strategy.MethodIterativeRefinement, "Iterative Refinement", []string{"general", "quality_improvement"}, "Progressively improves data quality through multiple passes"},
	{strategy.MethodGraphOfThoughts, "Graph of Thoughts (GoT)", nil, "Reasons about data as interconnected graphs"},
}

// domainsFor returns the catalogue domains of a method entry.
func domainsFor(info MethodInfo) []string {
	if info.Domains != nil {
		return append([]string(nil), info.Domains...)
	}
	for _, row := range methodDomains {
		if row.method == info.Method {
			return append([]string(nil), row.domains...)
		}
	}
	return nil
}

// MethodForDomain returns the method routed to domain.
func MethodForDomain(domain string) (string, bool) {
	m, ok := domainMethod[normalizeDomain(domain)]
	return m, ok
}

// KnownDomains returns every routable domain, grouped by method.
func KnownDomains() []string {
	out := make([]string, 0, len(domainMethod))
	for _, row := range methodDomains {
		out = append(out, row.domains...)
	}
	return out
}
