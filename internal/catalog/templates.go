package catalog

import (
	"strconv"
	"strings"
)

// Renderer turns a caller's raw prompt into the full instruction block sent
// to the provider.
type Renderer interface {
	Render(prompt string) string
}

// section is one numbered item the model is asked to cover.
type section struct {
	title  string
	detail string
}

// instruction frames a prompt with a role statement carrying the plain-text
// constraint, a numbered list of required sections, and a labelled block
// holding the prompt itself.
type instruction struct {
	intro    string
	sections []section
	label    string
}

// Render implements Renderer.
func (in instruction) Render(prompt string) string {
	var b strings.Builder
	b.Grow(len(in.intro) + len(prompt) + 64*len(in.sections))
	b.WriteString(in.intro)
	b.WriteString("\n\n")
	for i, s := range in.sections {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(s.title)
		b.WriteString(": ")
		b.WriteString(s.detail)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(in.label)
	b.WriteString(":\n")
	b.WriteString(prompt)
	return b.String()
}

// builtinTemplates is the closed set of renderers, one per catalog id.
// New refuses to build a Catalog when this map and the definitions disagree.
var builtinTemplates = map[string]Renderer{
	"explain-code": instruction{
		intro: "You are an expert software engineer and technical writer. Provide a comprehensive, step-by-step explanation of the following code snippet in plain text only. Do not use Markdown, headings, or code blocks. Cover:",
		sections: []section{
			{"Overall Purpose", "What problem does it solve?"},
			{"Key Components", "Describe each function, variable, and control flow."},
			{"Behavior", "How data moves through the code."},
			{"Edge Cases & Improvements", "Potential pitfalls and suggestions for optimization."},
		},
		label: "Code",
	},
	"fix-bug": instruction{
		intro: "You are a seasoned developer and code review expert. Analyze the following code in plain text only (no Markdown, no code blocks). Identify any bugs, logical errors, or poor practices, and provide:",
		sections: []section{
			{"List of Issues", "Numbered list explaining each defect or anti-pattern."},
			{"Corrected Code", "A clean, refactored version with comments."},
			{"Rationale", "Brief explanation of why each change improves the code."},
		},
		label: "Original Code",
	},
	"generate-regex": instruction{
		intro: "You are a regex architect and educator. Craft a regular expression to satisfy the following requirements in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Pattern Description", "Human-readable summary of what it matches."},
			{"Regex Pattern", "The final expression."},
			{"Component Breakdown", "Explain each part of the pattern."},
			{"Test Examples", "At least three examples that match and three that do not."},
		},
		label: "Requirement",
	},
	"refactor-code": instruction{
		intro: "You are a senior software engineer specializing in code quality and maintainability. Refactor the following code to improve its structure, readability, and efficiency. Provide your response in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Issues Identified", "List key problems with the original code."},
			{"Refactored Code", "The improved version in plain text."},
			{"Improvements Made", "Explanation of changes and their benefits."},
		},
		label: "Original Code",
	},
	"generate-docs": instruction{
		intro: "You are a technical documentation specialist. Create comprehensive documentation for the following code in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Function/Class Overview", "Brief description of purpose and functionality."},
			{"Parameters", "List and describe each input parameter."},
			{"Return Value", "Description of what the function returns."},
			{"Usage Examples", "At least two practical examples."},
			{"Exceptions", "Any errors that might be thrown."},
		},
		label: "Code to Document",
	},
	"code-review": instruction{
		intro: "You are a principal engineer conducting a code review. Analyze the following code for best practices, potential issues, and improvement opportunities. Provide your feedback in plain text only (no Markdown, no code blocks). Structure your response as:",
		sections: []section{
			{"Summary", "Overall assessment of code quality."},
			{"Strengths", "Positive aspects of the implementation."},
			{"Issues", "Specific problems or concerns with line references."},
			{"Recommendations", "Actionable suggestions for improvement."},
			{"Best Practices", "Relevant coding standards or patterns."},
		},
		label: "Code for Review",
	},
	"generate-unit-tests": instruction{
		intro: "You are a QA engineer specializing in unit testing. Create comprehensive unit tests for the following function in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Test Strategy", "Approach for testing this function."},
			{"Test Cases", "At least 5 test cases covering normal, edge, and error conditions."},
			{"Expected Outcomes", "What each test should produce."},
			{"Test Implementation", "Plain text representation of test code."},
		},
		label: "Function to Test",
	},
	"optimize-performance": instruction{
		intro: "You are a performance optimization expert. Analyze the following code for efficiency issues and provide optimizations. Respond in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Performance Issues", "Identified bottlenecks or inefficiencies."},
			{"Optimized Code", "Improved version with explanations."},
			{"Complexity Analysis", "Time/space complexity before and after."},
			{"Benchmark Suggestions", "How to measure improvements."},
		},
		label: "Code to Optimize",
	},
	"convert-language": instruction{
		intro: "You are a polyglot programming expert. Convert the following code from one programming language to another as requested. Provide your response in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Source Analysis", "Key patterns in the original language."},
			{"Target Implementation", "Converted code in the new language."},
			{"Language Differences", "Notable syntactic or semantic changes."},
			{"Considerations", "Potential issues or adaptations needed."},
		},
		label: "Conversion Request",
	},
	"design-patterns": instruction{
		intro: "You are a software architect specializing in design patterns. Implement the requested design pattern in the specified programming language. Provide your response in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Pattern Overview", "Explanation of the design pattern's purpose."},
			{"Implementation", "Code example following the pattern."},
			{"Use Cases", "When and why to use this pattern."},
			{"Benefits", "Advantages of this approach."},
		},
		label: "Request",
	},
	"security-audit": instruction{
		intro: "You are a cybersecurity expert specializing in application security. Conduct a security audit of the following code. Provide your findings in plain text only (no Markdown, no code blocks). Structure as:",
		sections: []section{
			{"Security Risks", "Identified vulnerabilities with severity ratings."},
			{"Exploitation Scenarios", "How each vulnerability could be exploited."},
			{"Remediation", "Specific fixes for each issue."},
			{"Best Practices", "Security principles to follow."},
		},
		label: "Code to Audit",
	},
	"database-query": instruction{
		intro: "You are a database expert and SQL optimizer. Create or optimize the database query as requested. Provide your response in plain text only (no Markdown, no code blocks). Include:",
		sections: []section{
			{"Query Purpose", "What data is being retrieved or manipulated."},
			{"SQL Query", "The final query in plain text."},
			{"Explanation", "How the query works and its components."},
			{"Optimization Notes", "Performance considerations or improvements."},
			{"Usage Examples", "How to execute or integrate the query."},
		},
		label: "Request",
	},
}
