package prompt

// Built-in prompt templates for BDD scenario generation, one per test type
// category. Each body carries the four required placeholders.

const unitTemplate = `You are a BDD expert creating Gherkin scenarios from user stories and acceptance criteria.

Feature: {feature_title}

User Stories:
{user_stories}

Acceptance Criteria:
{acceptance_criteria}

Please generate comprehensive BDD test scenarios for {test_type} testing. Focus on:
- Individual component behavior
- Happy path scenarios
- Error conditions and edge cases
- Input validation scenarios
- Expected vs actual behavior

Requirements:
- Use proper Gherkin syntax (Given, When, Then)
- Include both positive and negative test cases
- Cover all acceptance criteria
- Use descriptive, readable language
- Include scenario outlines where appropriate

Format: Return only the Gherkin Feature file content with Scenarios. Do not include explanations or comments.`

const integrationTemplate = `You are a BDD expert creating Gherkin scenarios for {test_type} testing between components.

Feature: {feature_title}

User Stories:
{user_stories}

Acceptance Criteria:
{acceptance_criteria}

Please generate comprehensive integration test scenarios that verify:
- Component interactions and data flow
- API interactions between services
- Database operations and data consistency
- End-to-end user workflows
- Third-party service integrations

Requirements:
- Use proper Gherkin syntax (Given, When, Then)
- Test complete user journeys
- Include scenarios for both success and failure states
- Cover all acceptance criteria
- Use scenario outlines for data-driven tests

Format: Return only the Gherkin Feature file content with Scenarios. Do not include explanations or comments.`

const e2eTemplate = `You are a BDD expert creating comprehensive {test_type} test scenarios.

Feature: {feature_title}

User Stories:
{user_stories}

Acceptance Criteria:
{acceptance_criteria}

Please generate complete end-to-end test scenarios that simulate real user journeys:
- Complete user workflows from start to finish
- Multi-step processes and user flows
- Performance and load test scenarios
- Security and compliance checks
- Cross-browser/device compatibility

Requirements:
- Use proper Gherkin syntax (Given, When, Then)
- Cover complete user journeys
- Include performance requirements
- Test error recovery and edge cases
- Verify data persistence and consistency

Format: Return only the Gherkin Feature file content with Scenarios. Do not include explanations or comments.`
